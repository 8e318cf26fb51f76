package model

// Envelope is the minimal shape read from a queued event before extraction.
type Envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}
