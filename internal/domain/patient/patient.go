package patient

import (
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/encounter"
)

type Patient struct {
	NationalID string
	Name       string
	BirthDate  string // as typed at reception, format unchecked
	Address    string
	Phones     []string

	// History holds encounters opened for this patient during the current
	// process. It is not persisted.
	History []*encounter.Encounter
}

// JoinedPhones is the comma-joined form stored in the patients document.
func (p *Patient) JoinedPhones() string {
	return strings.Join(p.Phones, ",")
}

// SplitPhones is the inverse of JoinedPhones. Empty input means no phones.
func SplitPhones(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func (p *Patient) RecordVisit(e *encounter.Encounter) {
	p.History = append(p.History, e)
}

type RegisterCommand struct {
	NationalID string
	Name       string
	BirthDate  string
	Address    string
	Phones     []string
}

// New builds a patient from a registration command. Blank phone entries are
// dropped so the stored list round-trips through the joined form.
func New(cmd *RegisterCommand) *Patient {
	var phones []string
	for _, ph := range cmd.Phones {
		if strings.TrimSpace(ph) != "" {
			phones = append(phones, ph)
		}
	}

	return &Patient{
		NationalID: strings.TrimSpace(cmd.NationalID),
		Name:       cmd.Name,
		BirthDate:  cmd.BirthDate,
		Address:    cmd.Address,
		Phones:     phones,
	}
}
