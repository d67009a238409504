package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// WhatsAppScheme prefixes every WhatsApp address on the provider side.
const WhatsAppScheme = "whatsapp:"

var _ MessageSender = (*WhatsAppClient)(nil)

// WhatsAppClient sends WhatsApp messages through a Twilio-compatible
// Messages API, one request per recipient.
type WhatsAppClient struct {
	baseURL       string
	accountSID    string
	authToken     string
	from          string
	defaultRegion string
	httpClient    *http.Client
}

// NewWhatsAppClient creates a WhatsApp client. Numbers without a country
// code are parsed against defaultRegion (ISO 3166 code, e.g. "BR").
func NewWhatsAppClient(baseURL, accountSID, authToken, from, defaultRegion string, httpClient *http.Client) *WhatsAppClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WhatsAppClient{
		baseURL:       baseURL,
		accountSID:    accountSID,
		authToken:     authToken,
		from:          NormalizeWhatsApp(from, defaultRegion),
		defaultRegion: defaultRegion,
		httpClient:    httpClient,
	}
}

type messageErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SendMessage sends body to a single recipient. The recipient is normalized
// to the whatsapp: scheme first.
func (c *WhatsAppClient) SendMessage(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", NormalizeWhatsApp(to, c.defaultRegion))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create message request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw := readErrorBody(resp)
		var errResp messageErrorResponse
		if err := json.Unmarshal([]byte(raw), &errResp); err == nil && errResp.Message != "" {
			return &ProviderError{Provider: "whatsapp", StatusCode: resp.StatusCode, Message: errResp.Message}
		}
		return &ProviderError{Provider: "whatsapp", StatusCode: resp.StatusCode, Message: raw}
	}

	return nil
}

// NormalizeWhatsApp returns addr in the provider's whatsapp:+E164 form.
// Addresses already carrying the scheme are returned unchanged. Numbers that
// cannot be parsed are prefixed as-is and left for the provider to reject.
func NormalizeWhatsApp(addr, defaultRegion string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.HasPrefix(addr, WhatsAppScheme) {
		return addr
	}

	num, err := phonenumbers.Parse(addr, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return WhatsAppScheme + addr
	}
	return WhatsAppScheme + phonenumbers.Format(num, phonenumbers.E164)
}
