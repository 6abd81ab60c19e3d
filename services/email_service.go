package services

import (
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/HSouheill/marketplace_backend/config"
	"github.com/HSouheill/marketplace_backend/models"
	"gopkg.in/gomail.v2"
)

// Mailer sends a single HTML email.
type Mailer interface {
	Send(to, subject, html string) error
}

type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService returns a gomail-backed Mailer, or a Mailer that only logs
// when SMTP is not configured.
func NewEmailService(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		log.Println("SMTP configuration is incomplete, emails will be logged only")
		return logMailer{}
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &EmailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (s *EmailService) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("Email sent to %s: %s", to, subject)
	return nil
}

type logMailer struct{}

func (logMailer) Send(to, subject, _ string) error {
	log.Printf("Email to %s not sent (SMTP disabled): %s", to, subject)
	return nil
}

func vendorInvitationEmail(name, link string) string {
	return fmt.Sprintf(`<h2>Hello %s,</h2>
<p>You have been invited to sell on our marketplace.</p>
<p><a href="%s">Complete your vendor registration</a></p>
<p>This link expires in 7 days.</p>`, name, link)
}

func vendorStatusEmail(name, status string) string {
	return fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Your vendor account status is now <strong>%s</strong>.</p>`, name, status)
}

func vendorRemovedEmail(name string) string {
	return fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Your vendor account has been removed. Your customer account remains active.</p>`, name)
}

func quoteResponseEmail(q *models.Quote) string {
	var terms strings.Builder
	if q.ApprovedPrice != nil {
		fmt.Fprintf(&terms, "<li>Price: %.2f</li>", *q.ApprovedPrice)
	}
	if q.ApprovedQuantity != nil {
		fmt.Fprintf(&terms, "<li>Quantity: %d</li>", *q.ApprovedQuantity)
	}
	body := fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Your quote request for <strong>%s</strong> is now <strong>%s</strong>.</p>`,
		html.EscapeString(q.CustomerName), html.EscapeString(q.ProductName), q.Status)
	if terms.Len() > 0 {
		body += "<ul>" + terms.String() + "</ul>"
	}
	if q.ResponseMessage != "" {
		body += "<p>" + html.EscapeString(q.ResponseMessage) + "</p>"
	}
	return body
}
