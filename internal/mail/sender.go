package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"time"

	"github.com/simhub/backend/domain"
)

// Config holds the SMTP endpoint and sender identity.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// Configured reports whether outbound mail is enabled.
func (c Config) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// Sender delivers order confirmations over plain SMTP.
type Sender struct {
	cfg Config
}

func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// SendOrderCreated mails the checkout confirmation with the payment details.
func (s *Sender) SendOrderCreated(ctx context.Context, order *domain.Order) error {
	if !s.cfg.Configured() {
		return fmt.Errorf("mail: SMTP not configured")
	}
	if order == nil || order.Email == "" {
		return domain.ErrInvalidPayload
	}

	from := s.cfg.FromEmail
	if from == "" {
		from = s.cfg.Username
	}

	var buf bytes.Buffer
	buf.WriteString("From: " + s.cfg.FromName + " <" + from + ">\r\n")
	buf.WriteString("To: " + order.Email + "\r\n")
	buf.WriteString("Subject: Order " + order.Code + " received\r\n")
	buf.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.WriteString(body(order))

	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	done := make(chan error, 1)
	go func() { done <- smtp.SendMail(addr, auth, from, []string{order.Email}, buf.Bytes()) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func body(order *domain.Order) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Thank you for your order %s.\n\n", order.Code)
	for _, item := range order.Items {
		fmt.Fprintf(&buf, "  %s x%d  %.0f\n", item.VariantCode, item.Quantity, item.FinalPrice)
	}
	fmt.Fprintf(&buf, "\nTotal: %.0f VND\n", order.TotalPrice)
	if order.QRImageURL != "" {
		fmt.Fprintf(&buf, "Pay by bank transfer: %s\n", order.QRImageURL)
	}
	fmt.Fprintf(&buf, "\nTrack your order with code %s.\n", order.Code)
	return buf.String()
}
