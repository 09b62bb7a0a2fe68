package encounter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStartsOpen(t *testing.T) {
	opened := time.Date(2024, 3, 5, 9, 30, 15, 123456789, time.Local)
	e := New(&OpenCommand{PatientNationalID: "111", Reason: "toothache", TicketNumber: 4, OpenedAt: opened})

	assert.True(t, e.IsOpen())
	assert.Equal(t, 4, e.TicketNumber)
	assert.Equal(t, "05/03/2024 09:30:15", e.OpenedAt.Format(TimestampLayout))
	assert.Zero(t, e.OpenedAt.Nanosecond())
}

func TestClose(t *testing.T) {
	e := New(&OpenCommand{PatientNationalID: "111", OpenedAt: time.Now()})
	e.Close(Outcome{Diagnosis: "caries"})

	assert.False(t, e.IsOpen())
	assert.Equal(t, "caries", e.Diagnosis)
	assert.Equal(t, "111", e.PatientNationalID)
}

func TestFirstOpen(t *testing.T) {
	closed := &Encounter{Outcome: Outcome{FollowUp: "Sim"}}
	open := &Encounter{}

	assert.Equal(t, -1, FirstOpen(nil))
	assert.Equal(t, -1, FirstOpen([]*Encounter{closed}))
	assert.Equal(t, 1, FirstOpen([]*Encounter{closed, open, open}))
	assert.Equal(t, 0, FirstOpen([]*Encounter{open, closed}))
}

func TestTimestamp(t *testing.T) {
	e := New(&OpenCommand{OpenedAt: time.Date(2024, 3, 5, 9, 30, 15, 0, time.Local)})
	assert.Equal(t, "05/03/2024 09:30:15", e.Timestamp())

	stored := &Encounter{OpenedAtText: "2024-03-05T09:30"}
	assert.Equal(t, "2024-03-05T09:30", stored.Timestamp())
}
