// Package smtp sends outreach email through an SMTP relay with STARTTLS
// and PLAIN authentication.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/fwojciec/prospect"
)

// Defaults for the Gmail relay.
const (
	DefaultHost        = "smtp.gmail.com"
	DefaultPort        = "587"
	DefaultDialTimeout = 30 * time.Second
)

// DefaultRetryDelays give three attempts in total.
var DefaultRetryDelays = []time.Duration{time.Second, 2 * time.Second}

// Ensure Sender implements prospect.Sender at compile time.
var _ prospect.Sender = (*Sender)(nil)

// Sender delivers drafts through an SMTP relay. Transient failures are
// retried; rejected credentials and refused recipients are not.
type Sender struct {
	host        string
	port        string
	username    string
	password    string
	fromName    string
	dialTimeout time.Duration
	delays      []time.Duration
	tlsConfig   *tls.Config
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Sender.
type Option func(*Sender)

// WithAddr sets the relay host and port.
func WithAddr(host, port string) Option {
	return func(s *Sender) {
		s.host = host
		s.port = port
	}
}

// WithFromName sets the display name of the From header.
func WithFromName(name string) Option {
	return func(s *Sender) {
		s.fromName = name
	}
}

// WithDialTimeout bounds each connection attempt.
func WithDialTimeout(d time.Duration) Option {
	return func(s *Sender) {
		s.dialTimeout = d
	}
}

// WithRetryDelays sets the waits between attempts.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(s *Sender) {
		s.delays = delays
	}
}

// WithTLSConfig sets the STARTTLS configuration.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Sender) {
		s.tlsConfig = cfg
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

// NewSender creates a Sender that authenticates as username.
func NewSender(username, password string, opts ...Option) *Sender {
	s := &Sender{
		host:        DefaultHost,
		port:        DefaultPort,
		username:    username,
		password:    password,
		dialTimeout: DefaultDialTimeout,
		delays:      DefaultRetryDelays,
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tlsConfig == nil {
		s.tlsConfig = &tls.Config{ServerName: s.host}
	}
	return s
}

// Send delivers draft to opts.To as a plain text message.
func (s *Sender) Send(ctx context.Context, draft *prospect.EmailDraft, opts prospect.SendOptions) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	to, err := mail.ParseAddress(opts.To)
	if err != nil {
		return prospect.Errorf(prospect.EINVALID, "invalid recipient address %q", opts.To)
	}
	if s.username == "" || s.password == "" {
		return prospect.Errorf(prospect.EAUTH, "SMTP credentials required")
	}

	msg, err := s.buildMessage(draft, to.Address)
	if err != nil {
		return err
	}

	return prospect.Retry(ctx, s.delays,
		func(attempt int, err error) {
			s.logger.Warn("send failed, retrying", "to", to.Address, "attempt", attempt, "err", err)
		},
		func(ctx context.Context) error {
			return s.send(ctx, to.Address, msg)
		},
	)
}

func (s *Sender) send(ctx context.Context, to string, msg []byte) error {
	dialer := &net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(s.host, s.port))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return prospect.Errorf(prospect.EUNAVAILABLE, "connecting to SMTP relay: %v", err)
	}
	deadline := time.Now().Add(s.dialTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return classify(err, "greeting")
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(s.tlsConfig); err != nil {
			return classify(err, "starttls")
		}
	}
	if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
		return classify(err, "auth")
	}
	if err := c.Mail(s.username); err != nil {
		return classify(err, "mail from")
	}
	if err := c.Rcpt(to); err != nil {
		return classify(err, "rcpt to")
	}
	w, err := c.Data()
	if err != nil {
		return classify(err, "data")
	}
	if _, err := w.Write(msg); err != nil {
		return classify(err, "data")
	}
	if err := w.Close(); err != nil {
		return classify(err, "data")
	}
	// The relay accepted the message; a failed QUIT must not resend it.
	if err := c.Quit(); err != nil {
		s.logger.Warn("SMTP quit failed after delivery", "to", to, "err", err)
	}
	return nil
}

// classify maps an SMTP failure during step to an application error.
func classify(err error, step string) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch {
		case tpErr.Code == 535 || tpErr.Code == 534 || tpErr.Code == 530 || strings.HasPrefix(tpErr.Msg, "5.7."):
			return prospect.Errorf(prospect.EAUTH, "authentication failed: %d %s", tpErr.Code, tpErr.Msg)
		case step == "rcpt to" && (tpErr.Code == 550 || tpErr.Code == 553):
			return prospect.Errorf(prospect.EINVALID, "recipient refused: %d %s", tpErr.Code, tpErr.Msg)
		}
		return prospect.Errorf(prospect.EUNAVAILABLE, "SMTP %s failed: %d %s", step, tpErr.Code, tpErr.Msg)
	}
	if step == "auth" {
		// net/smtp refuses PLAIN auth over an unencrypted remote connection.
		return prospect.Errorf(prospect.EAUTH, "authentication failed: %v", err)
	}
	return prospect.Errorf(prospect.EUNAVAILABLE, "SMTP %s failed: %v", step, err)
}

// buildMessage renders draft as an RFC 5322 message with a quoted-printable
// UTF-8 body.
func (s *Sender) buildMessage(draft *prospect.EmailDraft, to string) ([]byte, error) {
	from := (&mail.Address{Name: s.fromName, Address: s.username}).String()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", draft.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	body := strings.ReplaceAll(draft.Body, "\r\n", "\n")
	if _, err := qp.Write([]byte(strings.ReplaceAll(body, "\n", "\r\n"))); err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}
	return buf.Bytes(), nil
}
