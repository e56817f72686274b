package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"pharmaplus_echo/internal/models"
)

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	fromName string
}

func NewEmailService() *EmailService {
	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "PharmaPlus"
	}
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASS"),
		from:     os.Getenv("EMAIL_FROM"),
		fromName: fromName,
	}
}

// SendEmail delivers an HTML email over plain SMTP.
func (s *EmailService) SendEmail(to []string, subject, htmlBody string) error {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("SMTP credentials not fully configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	message := []byte(fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
		"\r\n"+
		"%s\r\n", s.fromName, s.from, to[0], subject, htmlBody))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, to, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendOrderPlacedEmail confirms to the customer that their order was received.
func (s *EmailService) SendOrderPlacedEmail(order *models.Order, user *models.User, pharmacy *models.Pharmacy) error {
	if user.Email == "" {
		return fmt.Errorf("user email is required")
	}
	subject := fmt.Sprintf("Order received – #%d", order.ID)
	html := buildOrderEmailHTML(order, user, pharmacy,
		"Thanks for your order",
		fmt.Sprintf("We've received your order <strong>#%d</strong> from <strong>%s</strong>. We're processing it and will notify you when it ships or is ready for pickup.", order.ID, pharmacy.Name))
	return s.SendEmail([]string{user.Email}, subject, html)
}

// SendOrderDeliveredEmail tells the customer their order arrived.
func (s *EmailService) SendOrderDeliveredEmail(order *models.Order, user *models.User, pharmacy *models.Pharmacy) error {
	if user.Email == "" {
		return fmt.Errorf("user email is required")
	}
	subject := fmt.Sprintf("Order delivered – #%d", order.ID)
	html := buildOrderEmailHTML(order, user, pharmacy,
		"Your order is delivered!",
		fmt.Sprintf("Great news — your order <strong>#%d</strong> from <strong>%s</strong> has been <strong>delivered</strong>.", order.ID, pharmacy.Name))
	return s.SendEmail([]string{user.Email}, subject, html)
}

func buildOrderEmailHTML(order *models.Order, user *models.User, pharmacy *models.Pharmacy, heading, intro string) string {
	var items strings.Builder
	for i, it := range order.Items {
		fmt.Fprintf(&items,
			`<tr><td style="padding: 8px;">%d. %s</td><td style="padding: 8px; text-align:center;">%d</td></tr>`,
			i+1, it.Name, it.Quantity)
	}

	name := user.Firstname
	if name == "" {
		name = user.FullName
	}

	return fmt.Sprintf(`
  <div style="font-family: Arial, sans-serif; color: #333; max-width: 700px; margin: auto; padding: 24px; background: #f9fafb;">
    <div style="background: #fff; padding: 20px; border-radius: 8px; border: 1px solid #e6e6e6;">
      <h1 style="margin:0; color:#2f855a; font-size:20px;">%s</h1>
      <p style="color:#666;">Hi %s,</p>
      <p style="color:#444">%s</p>
      <h3 style="margin-top:12px;">Order summary</h3>
      <table style="border-collapse: collapse; width:100%%; margin-top:8px;">
        <thead>
          <tr>
            <th style="text-align:left; padding:8px; background:#f3f3f3;">Item</th>
            <th style="text-align:center; padding:8px; background:#f3f3f3;">Qty</th>
          </tr>
        </thead>
        <tbody>%s</tbody>
      </table>
      <p style="margin-top:12px;"><strong>Total:</strong> %s</p>
      <p style="color:#777; font-size:13px">Delivery address: %s %s</p>
      <hr style="margin-top:18px; border-color:#eee;" />
      <p style="color:#999; font-size:12px;">If you need help, reply to this email or contact the pharmacy at %s.</p>
    </div>
  </div>`,
		heading, name, intro, items.String(), order.Total,
		order.Address.Street, order.Address.City, pharmacy.Email)
}
