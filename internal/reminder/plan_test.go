package reminder

import (
	"testing"
	"time"

	"github.com/mmynk/billreminder/internal/models"
)

func date(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func enabledSettings(offsets ...int) *models.UserSettings {
	return &models.UserSettings{
		UserID:               "user-1",
		NotificationsEnabled: true,
		EmailRecipients:      []string{"a@x.com"},
		ReminderOffsets:      offsets,
	}
}

func insertDates(ops []models.ReminderOp) []string {
	var out []string
	for _, op := range ops {
		if op.Kind == models.ReminderInsert {
			out = append(out, models.FormatDate(op.Reminder.RemindDate))
		}
	}
	return out
}

func TestPlan_Create(t *testing.T) {
	bill := &models.Bill{ID: "bill-1", UserID: "user-1", DueDate: date("2026-03-10")}

	tests := []struct {
		name      string
		settings  *models.UserSettings
		wantDates []string
	}{
		{
			name:      "offsets 1 and 3",
			settings:  enabledSettings(1, 3),
			wantDates: []string{"2026-03-09", "2026-03-07"},
		},
		{
			name:      "no offsets defaults to one day",
			settings:  enabledSettings(),
			wantDates: []string{"2026-03-09"},
		},
		{
			name:      "zero and negative offsets are accepted",
			settings:  enabledSettings(0, -2),
			wantDates: []string{"2026-03-10", "2026-03-12"},
		},
		{
			name:      "duplicate offsets collapse",
			settings:  enabledSettings(2, 2),
			wantDates: []string{"2026-03-08"},
		},
		{
			name:      "missing settings",
			settings:  nil,
			wantDates: nil,
		},
		{
			name: "notifications disabled",
			settings: &models.UserSettings{
				UserID:          "user-1",
				ReminderOffsets: []int{1, 3},
			},
			wantDates: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := Plan(nil, bill, tt.settings, date("2026-03-01"))
			got := insertDates(ops)
			if len(got) != len(ops) {
				t.Fatalf("expected only inserts on create, got %v", ops)
			}
			if len(got) != len(tt.wantDates) {
				t.Fatalf("dates = %v, want %v", got, tt.wantDates)
			}
			for i := range got {
				if got[i] != tt.wantDates[i] {
					t.Errorf("date[%d] = %s, want %s", i, got[i], tt.wantDates[i])
				}
			}
		})
	}
}

func TestPlan_CreateChannelFlags(t *testing.T) {
	bill := &models.Bill{ID: "bill-1", UserID: "user-1", DueDate: date("2026-03-10")}
	settings := &models.UserSettings{
		NotificationsEnabled: true,
		WhatsAppRecipients:   []string{"+5521999999999"},
	}

	ops := Plan(nil, bill, settings, date("2026-03-01"))
	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}
	r := ops[0].Reminder
	if r.SendEmail {
		t.Error("SendEmail should be false without email recipients")
	}
	if !r.SendWhatsApp {
		t.Error("SendWhatsApp should be true with a WhatsApp recipient")
	}
	if r.BillID != "bill-1" || r.UserID != "user-1" {
		t.Errorf("reminder ownership = (%s, %s), want (bill-1, user-1)", r.BillID, r.UserID)
	}
}

func TestPlan_Update(t *testing.T) {
	today := date("2026-03-05")
	base := models.Bill{ID: "bill-1", UserID: "user-1", Title: "Rent", DueDate: date("2026-03-10")}

	t.Run("title change produces no ops", func(t *testing.T) {
		next := base
		next.Title = "Rent (March)"
		if ops := Plan(&base, &next, enabledSettings(1), today); len(ops) != 0 {
			t.Errorf("expected no ops, got %v", ops)
		}
	})

	t.Run("due date change deletes future unsent and regenerates", func(t *testing.T) {
		next := base
		next.DueDate = date("2026-03-20")
		ops := Plan(&base, &next, enabledSettings(1, 3), today)

		if len(ops) != 3 {
			t.Fatalf("expected 3 ops, got %d: %v", len(ops), ops)
		}
		if ops[0].Kind != models.ReminderDeleteUnsentFrom {
			t.Errorf("first op = %s, want delete_unsent_from", ops[0].Kind)
		}
		if !ops[0].From.Equal(today) {
			t.Errorf("delete from = %s, want %s", ops[0].From, today)
		}
		got := insertDates(ops)
		if len(got) != 2 || got[0] != "2026-03-19" || got[1] != "2026-03-17" {
			t.Errorf("regenerated dates = %v", got)
		}
	})

	t.Run("due date change with notifications disabled only deletes", func(t *testing.T) {
		next := base
		next.DueDate = date("2026-03-20")
		ops := Plan(&base, &next, nil, today)
		if len(ops) != 1 || ops[0].Kind != models.ReminderDeleteUnsentFrom {
			t.Errorf("expected a single delete_unsent_from, got %v", ops)
		}
	})

	t.Run("paid transition deletes all unsent", func(t *testing.T) {
		next := base
		next.Paid = true
		ops := Plan(&base, &next, enabledSettings(1), today)
		if len(ops) != 1 || ops[0].Kind != models.ReminderDeleteAllUnsent {
			t.Errorf("expected a single delete_all_unsent, got %v", ops)
		}
	})

	t.Run("unpaid transition does not recreate", func(t *testing.T) {
		prev := base
		prev.Paid = true
		next := base
		if ops := Plan(&prev, &next, enabledSettings(1), today); len(ops) != 0 {
			t.Errorf("expected no ops, got %v", ops)
		}
	})

	t.Run("due date change on a paid bill does not regenerate", func(t *testing.T) {
		prev := base
		prev.Paid = true
		next := prev
		next.DueDate = date("2026-03-20")
		ops := Plan(&prev, &next, enabledSettings(1, 3), today)
		if len(ops) != 1 || ops[0].Kind != models.ReminderDeleteUnsentFrom {
			t.Errorf("expected a single delete_unsent_from, got %v", ops)
		}
	})

	t.Run("due date and paid together ends with delete all", func(t *testing.T) {
		next := base
		next.DueDate = date("2026-03-20")
		next.Paid = true
		ops := Plan(&base, &next, enabledSettings(1), today)
		if len(ops) == 0 || ops[len(ops)-1].Kind != models.ReminderDeleteAllUnsent {
			t.Errorf("expected delete_all_unsent last, got %v", ops)
		}
	})
}

func TestRemindDates_CrossesMonth(t *testing.T) {
	got := RemindDates(date("2026-03-01"), []int{1, 30})
	want := []string{"2026-02-28", "2026-01-30"}
	for i, d := range got {
		if models.FormatDate(d) != want[i] {
			t.Errorf("RemindDates[%d] = %s, want %s", i, models.FormatDate(d), want[i])
		}
	}
}
