package services

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendLicenseCodes(email string, codes []string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendLicenseCodes(email string, codes []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your LicGate activation codes")

	var list strings.Builder
	for _, code := range codes {
		list.WriteString("<li><code>" + code + "</code></li>")
	}

	body := fmt.Sprintf(`
		<h3>Activation codes issued</h3>
		<p>The following activation codes were issued for you:</p>
		<ul>%s</ul>
		<p>Each code activates the product on a single machine and can be
		re-checked from that machine at any time.</p>
		<p>Best regards,<br>The LicGate Team</p>
	`, list.String())

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send license email: %w", err)
	}

	return nil
}
