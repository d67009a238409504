package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

var _ EmailSender = (*EmailClient)(nil)

// EmailClient sends email through a Resend-compatible HTTP API.
type EmailClient struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewEmailClient creates an email client. from is the default sender address
// used for every message.
func NewEmailClient(baseURL, apiKey, from string, httpClient *http.Client) *EmailClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EmailClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       from,
		httpClient: httpClient,
	}
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type emailErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Name       string `json:"name"`
}

// SendEmail posts one email addressed to all recipients.
func (c *EmailClient) SendEmail(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	jsonBody, err := json.Marshal(emailRequest{
		From:    c.from,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readErrorBody(resp)
		var errResp emailErrorResponse
		if err := json.Unmarshal([]byte(body), &errResp); err == nil && errResp.Message != "" {
			return &ProviderError{Provider: "email", StatusCode: resp.StatusCode, Message: errResp.Message}
		}
		return &ProviderError{Provider: "email", StatusCode: resp.StatusCode, Message: body}
	}

	return nil
}
