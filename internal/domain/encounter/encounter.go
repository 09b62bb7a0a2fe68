package encounter

import (
	"time"
)

// TimestampLayout is the dd/mm/yyyy HH:MM:SS form used in the encounters document.
const TimestampLayout = "02/01/2006 15:04:05"

// Outcome is what the practitioner records when closing a visit.
type Outcome struct {
	Diagnosis    string
	Prescription string
	FollowUp     string
}

func (o Outcome) IsEmpty() bool {
	return o.Diagnosis == "" && o.Prescription == "" && o.FollowUp == ""
}

// Encounter is one clinical visit. The outcome starts empty and is filled once
// when the visit is closed.
type Encounter struct {
	PatientNationalID string
	Reason            string

	// OpenedAt is zero when the stored timestamp is not in TimestampLayout;
	// OpenedAtText then keeps it verbatim.
	OpenedAt     time.Time
	OpenedAtText string

	// TicketNumber is the waiting-room ticket the visit was opened for.
	// Zero when unknown.
	TicketNumber int

	Outcome
}

// Timestamp is the stored form of the opening time.
func (e *Encounter) Timestamp() string {
	if e.OpenedAtText != "" {
		return e.OpenedAtText
	}
	return e.OpenedAt.In(time.Local).Format(TimestampLayout)
}

func (e *Encounter) IsOpen() bool {
	return e.Outcome.IsEmpty()
}

// Close records the practitioner's outcome.
func (e *Encounter) Close(o Outcome) {
	e.Outcome = o
}

type OpenCommand struct {
	PatientNationalID string
	Reason            string
	TicketNumber      int
	OpenedAt          time.Time
}

func New(cmd *OpenCommand) *Encounter {
	// The document keeps second precision only.
	return &Encounter{
		PatientNationalID: cmd.PatientNationalID,
		OpenedAt:          cmd.OpenedAt.Truncate(time.Second),
		Reason:            cmd.Reason,
		TicketNumber:      cmd.TicketNumber,
	}
}

// FirstOpen returns the index of the first encounter with no outcome, or -1.
func FirstOpen(encounters []*Encounter) int {
	for i, e := range encounters {
		if e.IsOpen() {
			return i
		}
	}
	return -1
}
