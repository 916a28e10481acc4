// Package email sends low-stock alert emails via SMTP.
package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration.
type Config struct {
	Host       string
	Port       string
	Username   string
	Password   string
	From       string
	FromName   string
	Recipients []string
}

// Service sends alert emails. When not configured it refuses to send, and
// callers treat that as "alerts disabled".
type Service struct {
	config Config
	server string
	auth   smtp.Auth
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewService(config Config) *Service {
	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   smtp.PlainAuth("", config.Username, config.Password, config.Host),
		send:   smtp.SendMail,
	}
}

// IsConfigured returns true if email is configured.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != "" && len(s.config.Recipients) > 0
}

// LowStockAlert notifies the configured recipients that a resource has
// crossed into the given threshold level.
func (s *Service) LowStockAlert(resourceName string, currentAmount int, unit, level string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	subject := fmt.Sprintf("[stockpile] %s stock %s: %s", level, resourceName, formatAmount(currentAmount, unit))
	body := fmt.Sprintf(
		"Resource %q has dropped to %s, which is at or below its %s threshold.\n\nPlease review pending distribution requests before approving further draw-downs.\n",
		resourceName, formatAmount(currentAmount, unit), level,
	)
	return s.sendPlain(s.config.Recipients, subject, body)
}

func (s *Service) sendPlain(to []string, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return s.send(s.server, s.auth, s.config.From, to, msg)
}

func formatAmount(amount int, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%d", amount)
	}
	return fmt.Sprintf("%d %s", amount, unit)
}
