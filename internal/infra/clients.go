// README: Stripe and SMTP client construction.
package infra

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/wneessen/go-mail"
)

func NewStripe(secretKey string) *stripe.Client {
	return stripe.NewClient(secretKey)
}

// NewSMTPClient builds a go-mail client; plain auth is used when a username is set.
func NewSMTPClient(host string, port int, username, password string) (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(port)}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	return mail.NewClient(host, opts...)
}
