package notifier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"github.com/quickbite/payment-service/utils"
)

// SMTPConfig holds the mail server settings for outcome emails.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier sends payment outcome messages over SMTP.
type EmailNotifier struct {
	config SMTPConfig
	send   func(m ...*gomail.Message) error
}

func NewEmailNotifier(config SMTPConfig) *EmailNotifier {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return &EmailNotifier{
		config: config,
		send:   dialer.DialAndSend,
	}
}

// NotifyOutcome emails the customer about the payment result. SMS is not
// wired; a phone-only contact is logged and skipped.
func (n *EmailNotifier) NotifyOutcome(contact Contact, outcome Outcome) error {
	if contact.Email == "" {
		utils.LogInfo("No email for order ID: %s, skipping outcome notification", outcome.OrderID)
		return nil
	}

	subject := fmt.Sprintf("Payment received for order %s", outcome.OrderID)
	if !outcome.Succeeded {
		subject = fmt.Sprintf("Payment failed for order %s", outcome.OrderID)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(n.config.From, utils.AppName))
	m.SetHeader("To", contact.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", outcomeBody(outcome))

	if err := n.send(m); err != nil {
		return fmt.Errorf("failed to send outcome email: %v", err)
	}
	utils.LogInfo("Sent payment outcome email for order ID: %s", outcome.OrderID)
	return nil
}

func outcomeBody(outcome Outcome) string {
	// Amounts are stored in the smallest currency unit; render major units
	// for the customer.
	major := decimal.NewFromInt(outcome.Amount).Div(decimal.NewFromInt(100))
	amount := fmt.Sprintf("%s %s", strings.ToUpper(outcome.Currency), major.StringFixed(2))

	if outcome.Succeeded {
		return fmt.Sprintf(
			"<p>Thank you! Your payment of <b>%s</b> for order <b>%s</b> was successful.</p>"+
				"<p>Payment reference: %s</p>",
			amount, outcome.OrderID, outcome.ReferenceID)
	}
	return fmt.Sprintf(
		"<p>Your payment of <b>%s</b> for order <b>%s</b> could not be completed. "+
			"You can retry the payment from your orders page.</p>"+
			"<p>Payment reference: %s</p>",
		amount, outcome.OrderID, outcome.ReferenceID)
}
