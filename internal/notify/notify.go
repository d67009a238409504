// Package notify delivers reminder notifications through external providers:
// an email API and a WhatsApp messaging API. Both clients speak plain HTTPS
// and report any non-2xx response as a *ProviderError.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Email is one email send to a list of recipients.
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers an email to all of its recipients in one call.
type EmailSender interface {
	SendEmail(ctx context.Context, email Email) error
}

// MessageSender delivers a text message to a single recipient.
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// ProviderError is returned when a provider rejects a request.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
}

// maxErrorBody caps how much of an error response is kept in the message.
const maxErrorBody = 512

func readErrorBody(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return ""
	}
	return string(body)
}
