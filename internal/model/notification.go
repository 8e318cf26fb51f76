package model

import "time"

// NotificationResult is produced once per processed queue message and never mutated.
// Empty status strings mean the channel was not attempted or returned nothing.
type NotificationResult struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	EmailStatus string `json:"email_status,omitempty"`
	SMSStatus   string `json:"sms_status,omitempty"`
	EventID     string `json:"event_id,omitempty"`
	EventType   string `json:"event_type,omitempty"`
}

// NotificationStatus is the persisted outcome of a processed message.
type NotificationStatus string

const (
	StatusSent    NotificationStatus = "sent"
	StatusSkipped NotificationStatus = "skipped"
	StatusFailed  NotificationStatus = "failed"
)

func (s NotificationStatus) String() string {
	return string(s)
}

func (s NotificationStatus) Valid() bool {
	return s == StatusSent || s == StatusSkipped || s == StatusFailed
}

// StatusOf maps a result onto its persisted status.
func StatusOf(r NotificationResult) NotificationStatus {
	switch {
	case !r.Success:
		return StatusFailed
	case r.EmailStatus == "" && r.SMSStatus == "":
		return StatusSkipped
	default:
		return StatusSent
	}
}

// NotificationRecord is the DB entity persisted in the notifications table.
type NotificationRecord struct {
	ID          string             `db:"id"          json:"id"`
	EventID     string             `db:"event_id"    json:"event_id"`
	EventType   string             `db:"event_type"  json:"event_type"`
	Email       string             `db:"email"       json:"email"`
	Phone       string             `db:"phone"       json:"phone"`
	AmountMinor int64              `db:"amount_minor" json:"amount_minor"`
	Currency    string             `db:"currency"    json:"currency"`
	EmailStatus string             `db:"email_status" json:"email_status"`
	SMSStatus   string             `db:"sms_status"  json:"sms_status"`
	Status      NotificationStatus `db:"status"      json:"status"`
	Error       string             `db:"error"       json:"error"`
	CreatedAt   time.Time          `db:"created_at"  json:"created_at"`
}
