package dto

import "time"

// ApplicationDecidedMessage is the audit-trail payload published on every
// terminal decision (approval or rejection).
type ApplicationDecidedMessage struct {
	SessionId      string    `json:"session_id"`
	Approved       bool      `json:"approved"`
	Reason         string    `json:"reason"`
	ApprovedAmount int64     `json:"approved_amount"`
	RiskBand       string    `json:"risk_band,omitempty"`
	FOIR           float64   `json:"foir,omitempty"`
	DecidedAt      time.Time `json:"decided_at"`
}
