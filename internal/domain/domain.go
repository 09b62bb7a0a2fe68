package domain

import (
	"time"
)

// Role is the desk position that triggered an operation.
type Role string

const (
	RoleKiosk        Role = "kiosk"
	RoleReceptionist Role = "receptionist"
	RolePractitioner Role = "practitioner"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleKiosk, RoleReceptionist, RolePractitioner:
		return true
	}
	return false
}

type AuditAction string

const (
	ActionTicketIssued    AuditAction = "ticket_issued"
	ActionPatientCreated  AuditAction = "patient_created"
	ActionEncounterOpened AuditAction = "encounter_opened"
	ActionEncounterClosed AuditAction = "encounter_closed"
)

type AuditLog struct {
	OccurredAt time.Time
	SessionID  string

	// Who
	Role Role

	// What
	Action       AuditAction
	ResourceType string
	ResourceID   string

	Changes map[string]string
}
