package patient

import "context"

type Repository interface {
	// LoadPatients reads every stored patient keyed by national ID.
	LoadPatients(ctx context.Context) (map[string]*Patient, error)

	// AppendPatient persists one new patient. The whole document is rewritten.
	AppendPatient(ctx context.Context, p *Patient) error
}
