package libs

import (
	"errors"
	"fmt"
	"html"
	"io"

	"saif-gifts/models"

	"gopkg.in/gomail.v2"
)

type MailerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AdminTo  string
}

// Mailer sends order notifications to the shop admin.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	adminTo string
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return nil, errors.New("SMTP configuration missing")
	}
	if cfg.AdminTo == "" {
		return nil, errors.New("admin email not configured")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Password),
		from:    from,
		adminTo: cfg.AdminTo,
	}, nil
}

func (m *Mailer) SendOrderNotification(order *models.OrderSnapshot, invoice []byte) error {
	return m.dialer.DialAndSend(m.orderMessage(order, invoice))
}

func (m *Mailer) orderMessage(order *models.OrderSnapshot, invoice []byte) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.adminTo)
	if order.ShippingDetails.Email != "" {
		msg.SetHeader("Reply-To", order.ShippingDetails.Email)
	}
	msg.SetHeader("Subject", fmt.Sprintf("New Order %s - Saif Gifts", order.OrderID))
	msg.SetBody("text/html", orderEmailBody(order))

	if len(invoice) > 0 {
		msg.Attach(InvoiceFilename(order.OrderID), gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(invoice)
			return err
		}))
	}
	return msg
}

func orderEmailBody(order *models.OrderSnapshot) string {
	ship := order.ShippingDetails
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        .logo { font-size: 24px; font-weight: bold; color: #b45309; text-align: center; }
        .order-box { background-color: #fffbeb; padding: 20px; margin: 20px 0; border-radius: 8px; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">Saif Gifts</div>
        <h2 style="color: #333;">New Order</h2>
        <div class="order-box">
            <p><strong>Order ID:</strong> %s</p>
            <p><strong>Customer:</strong> %s</p>
            <p><strong>Phone:</strong> %s</p>
            <p><strong>Amount:</strong> Rs. %s</p>
        </div>
        <p>Please check the attached invoice PDF.</p>
        <div class="footer">
            <p>This is an automated email from the Saif Gifts storefront.</p>
        </div>
    </div>
</body>
</html>
	`,
		html.EscapeString(order.OrderID),
		html.EscapeString(ship.FullName),
		html.EscapeString(ship.Phone),
		order.Total.StringFixed(2),
	)
}
