package encounter

import "context"

type Repository interface {
	// LoadEncounters returns every encounter in document order.
	LoadEncounters(ctx context.Context) ([]*Encounter, error)

	AppendEncounter(ctx context.Context, e *Encounter) error

	// UpdateFirstEncounter fills the outcome of the first encounter in document
	// order. Returns ErrNoEncounters if the document is empty.
	UpdateFirstEncounter(ctx context.Context, o Outcome) (*Encounter, error)

	// UpdateEncounterAt fills the outcome of the encounter at index.
	// Returns ErrEncounterNotFound if index is out of range.
	UpdateEncounterAt(ctx context.Context, index int, o Outcome) (*Encounter, error)
}
