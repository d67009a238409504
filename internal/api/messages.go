package api

import "time"

// Amounts travel as decimal strings ("120.50") and calendar dates as
// "YYYY-MM-DD" strings.

type Bill struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Amount        string     `json:"amount"`
	AmountDue     string     `json:"amountDue"`
	DueDate       string     `json:"dueDate"`
	Paid          bool       `json:"paid"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	Overdue       bool       `json:"overdue"`
	Category      string     `json:"category,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Discount      string     `json:"discount,omitempty"`
	Barcode       string     `json:"barcode,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Reminder struct {
	ID           string     `json:"id"`
	BillID       string     `json:"billId"`
	RemindDate   string     `json:"remindDate"`
	SendEmail    bool       `json:"sendEmail"`
	SendWhatsApp bool       `json:"sendWhatsapp"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
}

type CategoryTotal struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Amount   string `json:"amount"`
}

type Summary struct {
	TotalUnpaid    string          `json:"totalUnpaid"`
	OverdueCount   int             `json:"overdueCount"`
	OverdueAmount  string          `json:"overdueAmount"`
	UpcomingCount  int             `json:"upcomingCount"`
	UpcomingAmount string          `json:"upcomingAmount"`
	WindowDays     int             `json:"windowDays"`
	PaidThisMonth  string          `json:"paidThisMonth"`
	ByCategory     []CategoryTotal `json:"byCategory"`
}

type Settings struct {
	NotificationsEnabled bool       `json:"notificationsEnabled"`
	EmailRecipients      []string   `json:"emailRecipients"`
	WhatsAppRecipients   []string   `json:"whatsappRecipients"`
	ReminderOffsets      []int      `json:"reminderOffsets"`
	UpcomingWindowDays   int        `json:"upcomingWindowDays"`
	Exists               bool       `json:"exists"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

type CreateBillRequest struct {
	Title         string     `json:"title"`
	Amount        string     `json:"amount"`
	DueDate       string     `json:"dueDate"`
	Paid          bool       `json:"paid,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	Category      string     `json:"category,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Discount      string     `json:"discount,omitempty"`
	Barcode       string     `json:"barcode,omitempty"`
}

type CreateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type ImportBillsRequest struct {
	Bills []*CreateBillRequest `json:"bills"`
}

type ImportBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

type GetBillRequest struct {
	ID string `json:"id"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}

// ListBillsRequest filters are optional. Status is one of all, paid,
// unpaid, overdue or upcoming.
type ListBillsRequest struct {
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

// UpdateBillRequest changes only the fields that are set. An empty
// Discount clears the discount.
type UpdateBillRequest struct {
	ID            string     `json:"id"`
	Title         *string    `json:"title,omitempty"`
	Amount        *string    `json:"amount,omitempty"`
	DueDate       *string    `json:"dueDate,omitempty"`
	Paid          *bool      `json:"paid,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	Category      *string    `json:"category,omitempty"`
	PaymentMethod *string    `json:"paymentMethod,omitempty"`
	Discount      *string    `json:"discount,omitempty"`
	Barcode       *string    `json:"barcode,omitempty"`
}

type UpdateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type SetBillPaidRequest struct {
	ID     string     `json:"id"`
	Paid   bool       `json:"paid"`
	PaidAt *time.Time `json:"paidAt,omitempty"`
}

type SetBillPaidResponse struct {
	Bill *Bill `json:"bill"`
}

type DeleteBillRequest struct {
	ID string `json:"id"`
}

type DeleteBillResponse struct{}

type ListRemindersRequest struct {
	BillID string `json:"billId"`
}

type ListRemindersResponse struct {
	Reminders []*Reminder `json:"reminders"`
}

type GetDashboardRequest struct{}

type GetDashboardResponse struct {
	Summary *Summary `json:"summary"`
}

type GetSettingsRequest struct{}

type GetSettingsResponse struct {
	Settings *Settings `json:"settings"`
}

type UpdateSettingsRequest struct {
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	EmailRecipients      []string `json:"emailRecipients"`
	WhatsAppRecipients   []string `json:"whatsappRecipients"`
	ReminderOffsets      []int    `json:"reminderOffsets"`
	UpcomingWindowDays   int      `json:"upcomingWindowDays"`
}

type UpdateSettingsResponse struct {
	Settings *Settings `json:"settings"`
}

type DeleteAccountRequest struct{}

type DeleteAccountResponse struct{}
