package dispatch

import (
	"testing"

	"github.com/mmynk/billreminder/internal/models"
)

func TestUserEligibility(t *testing.T) {
	tests := []struct {
		name     string
		settings *models.UserSettings
		want     Eligibility
	}{
		{"missing", nil, Eligibility{Reason: ReasonSettingsMissing}},
		{"disabled", &models.UserSettings{}, Eligibility{Reason: ReasonNotificationsDisabled}},
		{"enabled", &models.UserSettings{NotificationsEnabled: true}, Eligibility{Eligible: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserEligibility(tt.settings); got != tt.want {
				t.Errorf("UserEligibility() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChannelEligibility(t *testing.T) {
	emailOnly := []*models.Reminder{{SendEmail: true}}
	both := []*models.Reminder{{SendEmail: false, SendWhatsApp: true}, {SendEmail: true}}
	settings := &models.UserSettings{
		NotificationsEnabled: true,
		EmailRecipients:      []string{"a@x.com"},
	}

	tests := []struct {
		name       string
		channel    Channel
		configured bool
		group      []*models.Reminder
		want       Eligibility
	}{
		{"email eligible", ChannelEmail, true, emailOnly, Eligibility{Eligible: true}},
		{"email any reminder requests", ChannelEmail, true, both, Eligibility{Eligible: true}},
		{"email not configured", ChannelEmail, false, emailOnly, Eligibility{Reason: ReasonProviderNotConfigured}},
		{"whatsapp not requested", ChannelWhatsApp, true, emailOnly, Eligibility{Reason: ReasonNotRequested}},
		{"whatsapp no recipients", ChannelWhatsApp, true, both, Eligibility{Reason: ReasonNoRecipients}},
		{"not configured checked first", ChannelWhatsApp, false, emailOnly, Eligibility{Reason: ReasonProviderNotConfigured}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChannelEligibility(tt.channel, tt.configured, tt.group, settings)
			if got != tt.want {
				t.Errorf("ChannelEligibility() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
