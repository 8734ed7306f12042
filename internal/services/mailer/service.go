// -----------------------------------------------------------------------
// Mailer Service - sends the rendered report as an e-mail attachment
// -----------------------------------------------------------------------

package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

// sendFunc delivers a finished message to the recipients
type sendFunc func(from string, to []string, msg []byte) error

// Service delivers the report PDF over SMTP
type Service struct {
	config common.EmailConfig
	logger arbor.ILogger
	send   sendFunc
	now    func() time.Time
}

var _ interfaces.DocumentSender = (*Service)(nil)

// NewService creates a new mailer service
func NewService(config common.EmailConfig, logger arbor.ILogger) *Service {
	s := &Service{
		config: config,
		logger: logger,
		now:    time.Now,
	}
	s.send = s.sendSMTP
	return s
}

// Name identifies the channel in logs and run records
func (s *Service) Name() string {
	return "email"
}

// IsConfigured checks if SMTP is configured with minimum required settings
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.From != "" && len(s.config.Recipients) > 0
}

// SendDocument mails the document to every recipient. The first caption line
// becomes the subject and the whole caption is rendered as the body.
func (s *Service) SendDocument(ctx context.Context, doc *models.RenderedDocument, caption string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("SMTP host, sender or recipients not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := os.ReadFile(doc.Path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	msg, err := s.buildMessage(caption, doc.Filename, content)
	if err != nil {
		return err
	}

	if err := s.send(s.config.From, s.config.Recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().
		Strs("to", s.config.Recipients).
		Str("filename", doc.Filename).
		Msg("Report e-mailed")
	return nil
}

// buildMessage assembles a multipart/mixed message: a text and HTML
// alternative followed by the PDF attachment
func (s *Service) buildMessage(caption, filename string, attachment []byte) ([]byte, error) {
	subject := strings.TrimSpace(strings.SplitN(caption, "\n", 2)[0])
	if subject == "" {
		subject = "Daily Stock Report"
	}

	to := make([]*mail.Address, 0, len(s.config.Recipients))
	for _, addr := range s.config.Recipients {
		to = append(to, &mail.Address{Address: addr})
	}

	var h mail.Header
	h.SetDate(s.now())
	h.SetAddressList("From", []*mail.Address{{Name: s.config.FromName, Address: s.config.From}})
	h.SetAddressList("To", to)
	h.SetSubject(subject)

	htmlBody, err := renderHTML(caption)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("failed to create inline part: %w", err)
	}
	if err := writePart(tw, "text/plain", caption); err != nil {
		return nil, err
	}
	if err := writePart(tw, "text/html", htmlBody); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close inline part: %w", err)
	}

	var ah mail.AttachmentHeader
	ah.SetContentType("application/pdf", nil)
	ah.SetFilename(filename)
	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}
	if _, err := aw.Write(attachment); err != nil {
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close attachment: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message: %w", err)
	}

	return buf.Bytes(), nil
}

func writePart(tw *mail.InlineWriter, contentType, body string) error {
	var ih mail.InlineHeader
	ih.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(ih)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("failed to write %s part: %w", contentType, err)
	}
	return w.Close()
}

// renderHTML converts the caption (markdown) to a small HTML document
func renderHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return `<!DOCTYPE html><html><head><meta charset="utf-8"></head>` +
		`<body style="font-family: Arial, sans-serif; font-size: 14px;">` +
		buf.String() +
		`<p style="color: #666666;">The four-page PDF report is attached.</p></body></html>`, nil
}

func (s *Service) sendSMTP(from string, to []string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if s.config.UseTLS {
		return s.sendWithTLS(addr, auth, from, to, msg)
	}

	return smtp.SendMail(addr, auth, from, to, msg)
}

// sendWithTLS uses an implicit TLS connection and falls back to STARTTLS
func (s *Service) sendWithTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: s.config.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		s.logger.Debug().Err(err).Str("addr", addr).Msg("Direct TLS failed, trying STARTTLS")

		client, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer client.Close()

		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
		return deliver(client, auth, from, to, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return deliver(client, auth, from, to, msg)
}

func deliver(client *smtp.Client, auth smtp.Auth, from string, to []string, msg []byte) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set mail recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
