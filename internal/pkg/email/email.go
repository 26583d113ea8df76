package email

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// Service defines the interface for outbound email
type Service interface {
	SendVerificationEmail(toEmail, toName, token string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	BaseURL   string // base URL used in verification links
}

type smtpService struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewService creates an SMTP-backed email service
func NewService(config SMTPConfig, logger zerolog.Logger) Service {
	return &smtpService{config: config, logger: logger}
}

// SendVerificationEmail sends an email with a verification link. When SMTP
// credentials are absent the token is logged instead, so local setups can
// complete the confirmation flow by hand.
func (s *smtpService) SendVerificationEmail(toEmail, toName, token string) error {
	verificationURL := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", s.config.BaseURL, token)

	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("verificationURL", verificationURL).
			Msg("SMTP credentials not configured - verification email not sent, use the URL above")
		return nil
	}

	subject := "Confirm your email - AssignTrack"
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Thank you for signing up to AssignTrack. Please confirm your email address by opening the link below:\r\n\r\n"+
			"%s\r\n\r\n"+
			"If you did not create an account, you can ignore this email.\r\n",
		toName, verificationURL)

	return s.sendPlainEmail(toEmail, subject, body)
}

func (s *smtpService) sendPlainEmail(toEmail, subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	message := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.config.FromName, s.config.FromEmail, toEmail, subject, body)

	addr := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
