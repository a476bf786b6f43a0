package services

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/example/velora/internal/models"
)

// Mailer sends transactional email over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates a Mailer. With an empty host the mailer is a no-op,
// which keeps local development working without an SMTP server.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	m := &Mailer{from: from}
	if host != "" {
		m.dialer = gomail.NewDialer(host, port, username, password)
	}
	return m
}

// Send delivers a single HTML message.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.dialer == nil {
		log.Println("[Mail] SMTP not configured, skipping send")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("[Mail] failed to send to %s: %v", to, err)
		return err
	}
	return nil
}

// SendOrderConfirmation emails the customer a line-itemized order summary.
func (m *Mailer) SendOrderConfirmation(user *models.User, order *models.Order) error {
	if user.Email == "" {
		return nil
	}

	var items strings.Builder
	for i, item := range order.Items {
		label := item.Name
		if item.Size != "" {
			label = fmt.Sprintf("%s (%s)", item.Name, item.Size)
		}
		items.WriteString(fmt.Sprintf("<tr><td>%d. %s</td><td>%d x %s</td><td>%s</td></tr>",
			i+1,
			label,
			item.Quantity,
			FormatPrice(item.Price),
			FormatPrice(item.Price*float64(item.Quantity)),
		))
	}

	body := fmt.Sprintf(`<h2>Thank you for your order!</h2>
<p>Order <b>%s</b> has been placed and is now pending confirmation.</p>
<table>%s</table>
<p>Subtotal: %s<br>
Discount: %s<br>
Shipping: %s<br>
<b>Total: %s</b></p>
<p>Payment method: %s</p>`,
		order.OrderNumber,
		items.String(),
		FormatPrice(order.Subtotal),
		FormatPrice(order.Discount),
		FormatPrice(order.ShippingFee),
		FormatPrice(order.FinalPrice),
		paymentMethodLabel(order.PaymentMethod),
	)

	subject := fmt.Sprintf("Order %s confirmed", order.OrderNumber)
	return m.Send(user.Email, subject, body)
}

// FormatPrice formats an amount with thousand separators.
func FormatPrice(amount float64) string {
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	cents := amount - float64(intAmount)
	if cents >= 0.005 {
		result.WriteString(fmt.Sprintf(".%02d", int(cents*100+0.5)))
	}
	return result.String()
}

func paymentMethodLabel(method string) string {
	switch method {
	case models.PaymentCOD:
		return "Cash on delivery"
	case models.PaymentPayme:
		return "Payme"
	case models.PaymentClick:
		return "Click"
	}
	return method
}
