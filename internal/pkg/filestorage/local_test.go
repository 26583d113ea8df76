package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeFileHeader builds a real multipart.FileHeader whose Open works.
func makeFileHeader(t *testing.T, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="homework.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestSaveSubmissionPDFWritesDeterministicPath(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := ls.SaveSubmissionPDF(makeFileHeader(t, []byte("%PDF-1.4 first")), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/7/3.pdf", url)

	stored, err := os.ReadFile(filepath.Join(dir, "7", "3.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 first"), stored)
}

func TestSaveSubmissionPDFOverwritesOnResubmit(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	url1, err := ls.SaveSubmissionPDF(makeFileHeader(t, []byte("first version")), 1, 1)
	require.NoError(t, err)
	url2, err := ls.SaveSubmissionPDF(makeFileHeader(t, []byte("v2")), 1, 1)
	require.NoError(t, err)

	// Same pair, same address: the URL is stable and the content replaced.
	assert.Equal(t, url1, url2)
	stored, err := os.ReadFile(filepath.Join(dir, "1", "1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), stored)
}

func TestSaveSubmissionPDFNilHeader(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	url, err := ls.SaveSubmissionPDF(nil, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestDeleteSubmissionPDF(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = ls.SaveSubmissionPDF(makeFileHeader(t, []byte("data")), 2, 5)
	require.NoError(t, err)

	require.NoError(t, ls.DeleteSubmissionPDF(2, 5))
	_, err = os.Stat(filepath.Join(dir, "2", "5.pdf"))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is fine, missing means already deleted.
	assert.NoError(t, ls.DeleteSubmissionPDF(2, 5))
}

func TestPublicURLIsolatesStudents(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	assert.NotEqual(t, ls.PublicURL(1, 9), ls.PublicURL(2, 9))
	assert.NotEqual(t, ls.PublicURL(1, 9), ls.PublicURL(1, 8))
}
