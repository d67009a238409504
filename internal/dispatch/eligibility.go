package dispatch

import "github.com/mmynk/billreminder/internal/models"

// Channel names a notification channel.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// SkipReason says why a user or channel was not attempted.
type SkipReason string

const (
	ReasonSettingsMissing       SkipReason = "settings_missing"
	ReasonNotificationsDisabled SkipReason = "notifications_disabled"
	ReasonProviderNotConfigured SkipReason = "provider_not_configured"
	ReasonNotRequested          SkipReason = "not_requested"
	ReasonNoRecipients          SkipReason = "no_recipients"
)

// Eligibility is the outcome of a gating check.
type Eligibility struct {
	Eligible bool
	Reason   SkipReason
}

var eligible = Eligibility{Eligible: true}

func skipped(reason SkipReason) Eligibility {
	return Eligibility{Reason: reason}
}

// UserEligibility decides whether a user's due reminders are processed at all.
// Skipped users keep their reminders unsent.
func UserEligibility(settings *models.UserSettings) Eligibility {
	if settings == nil {
		return skipped(ReasonSettingsMissing)
	}
	if !settings.NotificationsEnabled {
		return skipped(ReasonNotificationsDisabled)
	}
	return eligible
}

// ChannelEligibility decides whether a channel is attempted for a user group.
// A channel needs a configured provider, at least one reminder in the group
// requesting it and at least one recipient.
func ChannelEligibility(channel Channel, configured bool, group []*models.Reminder, settings *models.UserSettings) Eligibility {
	if !configured {
		return skipped(ReasonProviderNotConfigured)
	}

	requested := false
	for _, r := range group {
		if (channel == ChannelEmail && r.SendEmail) || (channel == ChannelWhatsApp && r.SendWhatsApp) {
			requested = true
			break
		}
	}
	if !requested {
		return skipped(ReasonNotRequested)
	}

	var hasRecipients bool
	switch channel {
	case ChannelEmail:
		hasRecipients = settings.HasEmailRecipients()
	case ChannelWhatsApp:
		hasRecipients = settings.HasWhatsAppRecipients()
	}
	if !hasRecipients {
		return skipped(ReasonNoRecipients)
	}
	return eligible
}
