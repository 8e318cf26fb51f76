package model

// ContactInfo is what the notifier pulls out of an event.
// AmountMinor is in the smallest currency unit (cents).
type ContactInfo struct {
	Email       string
	Phone       string
	AmountMinor int64
	Currency    string
}
