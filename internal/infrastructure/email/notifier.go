// Package email delivers notifications over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/ports"
)

// ErrNotConfigured is returned when host or sender are missing.
var ErrNotConfigured = errors.New("email notifier misconfigured")

// Config holds SMTP settings. Port 465 uses implicit TLS; other ports
// upgrade with STARTTLS when the server offers it.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

// Notifier sends one multipart message per notification to every opted-in recipient.
type Notifier struct {
	cfg    Config
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier applies defaults and returns a notifier.
func NewNotifier(cfg Config, logger *slog.Logger) *Notifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FromName == "" {
		cfg.FromName = "JurisMonitor"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{cfg: cfg, logger: logger.With("component", "notifier.email")}
}

// Channel identifies the notifier.
func (n *Notifier) Channel() domain.Channel {
	return domain.ChannelEmail
}

// Notify renders the notification and sends it in a single SMTP transaction.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	if n.cfg.Host == "" || n.cfg.From == "" {
		return ErrNotConfigured
	}

	to := addresses(note.Recipients)
	if len(to) == 0 {
		return nil
	}

	htmlBody, err := renderHTML(note)
	if err != nil {
		return err
	}
	textBody, err := plainText(htmlBody)
	if err != nil {
		return err
	}

	msg, err := n.buildMessage(note.Subject, textBody, htmlBody)
	if err != nil {
		return err
	}

	if err := n.send(ctx, to, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Debug("email sent", "recipients", len(to), "subject", note.Subject)
	return nil
}

func addresses(recipients []domain.Recipient) []string {
	seen := make(map[string]bool, len(recipients))
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if !r.Accepts(domain.ChannelEmail) {
			continue
		}
		addr := strings.ToLower(strings.TrimSpace(r.Email))
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

var messageTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
<h1 style="font-size: 18px;">{{.Subject}}</h1>
{{if .NPU}}<p>Processo: <strong>{{.NPU}}</strong></p>{{end}}
<ul>
{{range .Lines}}<li>{{.}}</li>
{{end}}</ul>
{{if .Link}}<p class="cta"><a href="{{.Link}}">Abrir no JurisMonitor</a></p>{{end}}
<p style="font-size: 12px; color: #6b7280;">Mensagem automática do monitoramento de processos.</p>
</body>
</html>
`))

func renderHTML(note domain.Notification) (string, error) {
	var buf bytes.Buffer
	if err := messageTemplate.Execute(&buf, note); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

// plainText derives the text/plain alternative from the rendered HTML.
func plainText(htmlBody string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return "", fmt.Errorf("parse email html: %w", err)
	}

	var lines []string
	doc.Find("body h1, body p, body li").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			text = "- " + text
		}
		if href, ok := s.Find("a[href]").Attr("href"); ok {
			text += ": " + href
		}
		lines = append(lines, text)
	})

	return strings.Join(lines, "\n"), nil
}

// buildMessage keeps recipient addresses out of the headers; delivery goes by
// the RCPT list alone.
func (n *Notifier) buildMessage(subject, textBody, htmlBody string) ([]byte, error) {
	boundary := "jm-" + uuid.NewString()

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", n.cfg.FromName), n.cfg.From)
	msg.WriteString("To: undisclosed-recipients:;\r\n")
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=UTF-8", textBody},
		{"text/html; charset=UTF-8", htmlBody},
	} {
		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		fmt.Fprintf(&msg, "Content-Type: %s\r\n", part.contentType)
		msg.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

		qp := quotedprintable.NewWriter(&msg)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		msg.WriteString("\r\n")
	}
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return msg.Bytes(), nil
}

func (n *Notifier) send(ctx context.Context, to []string, msg []byte) error {
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	tlsConfig := &tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: n.cfg.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if n.cfg.Port == 465 {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(n.cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if n.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if n.cfg.User != "" {
		if err := client.Auth(smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}
