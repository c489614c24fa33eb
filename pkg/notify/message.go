package notify

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
)

// buildMessage assembles the RFC 5322 message: standard headers plus a
// multipart body with the HTML document as an inline part.
func buildMessage(from, to string, email Email, date time.Time) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(email.Subject)

	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("creating inline part: %w", err)
	}
	var ih mail.InlineHeader
	ih.Set("Content-Type", "text/html; charset=utf-8")
	pw, err := iw.CreatePart(ih)
	if err != nil {
		return nil, fmt.Errorf("creating html part: %w", err)
	}
	if _, err := io.WriteString(pw, email.HTMLBody); err != nil {
		return nil, fmt.Errorf("writing html body: %w", err)
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("closing html part: %w", err)
	}
	if err := iw.Close(); err != nil {
		return nil, fmt.Errorf("closing inline part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}

	return buf.Bytes(), nil
}
