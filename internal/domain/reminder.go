package domain

import "time"

// ReminderConfig holds the per-period reminder policy. The store replaces the
// whole record on write so readers never share a mutable copy.
type ReminderConfig struct {
	PeriodID       string
	Enabled        bool
	DaysBefore     []int
	CheckFrequency string
}

// ReminderRecord is one append-only send fact. The external scheduler asks
// the store whether a matching record exists for the current UTC day before
// sending again.
type ReminderRecord struct {
	ID          string
	DataPointID string
	DaysBefore  int
	SentAt      time.Time
	RecipientID string
}

// Notification is one row in a recipient's flat inbox.
type Notification struct {
	ID          string
	RecipientID string
	Subject     string
	Body        string
	CreatedAt   time.Time
	Read        bool
}
