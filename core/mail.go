package core

import (
	"context"
	"net/mail"
	"regexp"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		Body    string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// Send delivers a single message, blocking until the underlying
		// transport accepts or rejects it. Callers that must not race
		// overlapping sends to the same address issue these sequentially.
		Send(ctx context.Context, msg *EmailMessage) error
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Body != "" }

var placeholderRegex = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// RenderTemplate substitutes {key} tokens in tmpl with values from data.
// A token whose value is absent or empty is left verbatim in the output so
// a misconfigured template degrades visibly instead of rendering blanks.
func RenderTemplate(tmpl string, data map[string]string) string {
	if tmpl == "" {
		return ""
	}
	return placeholderRegex.ReplaceAllStringFunc(tmpl, func(tok string) string {
		key := tok[1 : len(tok)-1]
		if val, ok := data[key]; ok && val != "" {
			return val
		}
		return tok
	})
}
