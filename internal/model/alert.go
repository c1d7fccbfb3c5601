package model

import "time"

// Severity classifies an Alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarn     Severity = "warn"
	SeverityBlocking Severity = "blocking"
)

// Alert is a project-level notice. A Blocking, unacknowledged alert
// refuses finish regardless of force (spec.md invariant I3).
type Alert struct {
	Message      string    `json:"message"`
	Severity     Severity  `json:"severity"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}
