package models

import "time"

// AuditOutcome records whether an action reached the backend successfully.
type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "success"
	AuditOutcomeFailure AuditOutcome = "failure"
)

// AuditEntry is one mutating back-office action.
type AuditEntry struct {
	ID        int64        `json:"id"`
	Actor     string       `json:"actor"`
	Entity    string       `json:"entity"`
	EntityID  string       `json:"entityId,omitempty"`
	Action    string       `json:"action"`
	Outcome   AuditOutcome `json:"outcome"`
	Detail    string       `json:"detail,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
