package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billreminder/internal/models"
)

func TestEmailClient_SendEmail(t *testing.T) {
	var got emailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer server.Close()

	client := NewEmailClient(server.URL, "key-123", "bills@example.com", server.Client())
	err := client.SendEmail(context.Background(), Email{
		To:      []string{"a@x.com", "b@x.com"},
		Subject: "Reminder: 1 bill due soon",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	require.NoError(t, err)

	assert.Equal(t, "bills@example.com", got.From)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got.To)
	assert.Equal(t, "Reminder: 1 bill due soon", got.Subject)
	assert.Equal(t, "<p>hi</p>", got.HTML)
	assert.Equal(t, "hi", got.Text)
}

func TestEmailClient_SendEmailProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"message":"invalid from address","name":"validation_error"}`))
	}))
	defer server.Close()

	client := NewEmailClient(server.URL, "key", "bad", server.Client())
	err := client.SendEmail(context.Background(), Email{To: []string{"a@x.com"}, Subject: "s", HTML: "h"})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnprocessableEntity, perr.StatusCode)
	assert.Equal(t, "invalid from address", perr.Message)
}

func TestEmailClient_NoRecipients(t *testing.T) {
	client := NewEmailClient("http://unused", "key", "from@x.com", nil)
	err := client.SendEmail(context.Background(), Email{Subject: "s"})
	assert.Error(t, err)
}

func TestWhatsAppClient_SendMessage(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"From": r.PostForm.Get("From"),
			"To":   r.PostForm.Get("To"),
			"Body": r.PostForm.Get("Body"),
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer server.Close()

	client := NewWhatsAppClient(server.URL, "AC123", "secret", "+14155238886", "BR", server.Client())
	err := client.SendMessage(context.Background(), "(21) 98765-4321", "hello")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "whatsapp:+14155238886", gotForm["From"])
	assert.Equal(t, "whatsapp:+5521987654321", gotForm["To"])
	assert.Equal(t, "hello", gotForm["Body"])
}

func TestWhatsAppClient_SendMessageProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":63007,"message":"channel not found","status":400}`))
	}))
	defer server.Close()

	client := NewWhatsAppClient(server.URL, "AC123", "secret", "whatsapp:+14155238886", "BR", server.Client())
	err := client.SendMessage(context.Background(), "whatsapp:+5521987654321", "hello")

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "whatsapp", perr.Provider)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Equal(t, "channel not found", perr.Message)
}

func TestNormalizeWhatsApp(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		region string
		want   string
	}{
		{"already prefixed", "whatsapp:+5521987654321", "BR", "whatsapp:+5521987654321"},
		{"international", "+1 650-253-0000", "BR", "whatsapp:+16502530000"},
		{"national with region", "(21) 98765-4321", "BR", "whatsapp:+5521987654321"},
		{"surrounding spaces", "  +5521987654321 ", "BR", "whatsapp:+5521987654321"},
		{"unparseable", "not-a-number", "BR", "whatsapp:not-a-number"},
		{"empty", "", "BR", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWhatsApp(tt.in, tt.region))
		})
	}
}

func TestRender(t *testing.T) {
	discount := decimal.RequireFromString("20")
	bills := []*models.Bill{
		{
			Title:   "Electricity",
			Amount:  decimal.RequireFromString("120.5"),
			DueDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:    "Rent <main>",
			Amount:   decimal.RequireFromString("1000"),
			Discount: &discount,
			DueDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	content, err := Render(bills, "R$")
	require.NoError(t, err)

	assert.Equal(t, "Reminder: 2 bills due soon", content.Subject)
	assert.Contains(t, content.HTML, "<strong>Electricity</strong>: R$ 120.50 (due 05/03/2026)")
	assert.Contains(t, content.HTML, "Rent &lt;main&gt;")
	assert.Contains(t, content.HTML, "R$ 980.00")
	assert.Contains(t, content.Text, "- Electricity: R$ 120.50 (due 05/03/2026)")
	assert.Contains(t, content.Text, "- Rent <main>: R$ 980.00 (due 10/03/2026)")
}

func TestRender_SingleBill(t *testing.T) {
	bills := []*models.Bill{{
		Title:   "Water",
		Amount:  decimal.RequireFromString("45"),
		DueDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}}

	content, err := Render(bills, "")
	require.NoError(t, err)
	assert.Equal(t, "Reminder: 1 bill due soon", content.Subject)
	assert.Contains(t, content.Text, "You have 1 bill due soon:")
	assert.Contains(t, content.Text, "- Water: 45.00 (due 02/01/2026)")
}
