package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/metrics"
)

// PatientRegistry is the in-memory source of truth for patient lookups.
// It is hydrated once from the repository and never re-read, so edits made
// to the document by another process are not seen until restart.
type PatientRegistry struct {
	repo     patient.Repository
	patients map[string]*patient.Patient
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewPatientRegistry(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *PatientRegistry {
	return &PatientRegistry{
		repo:     repo,
		patients: make(map[string]*patient.Patient),
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
	}
}

// Hydrate replaces the in-memory mapping with the stored patients.
func (r *PatientRegistry) Hydrate(ctx context.Context) error {
	patients, err := r.repo.LoadPatients(ctx)
	if err != nil {
		return fmt.Errorf("loading patients: %w", err)
	}
	r.patients = patients

	r.log.Info("patient registry hydrated", zap.Int("patients", len(patients)))
	return nil
}

func (r *PatientRegistry) Get(nationalID string) (*patient.Patient, bool) {
	p, ok := r.patients[strings.TrimSpace(nationalID)]
	return p, ok
}

func (r *PatientRegistry) Len() int {
	return len(r.patients)
}

// Register creates and persists a patient. When the national ID is already
// registered the existing record is returned unchanged with created=false.
func (r *PatientRegistry) Register(ctx context.Context, cmd *patient.RegisterCommand) (p *patient.Patient, created bool, err error) {
	if err := validateRegisterCommand(cmd); err != nil {
		return nil, false, err
	}

	if existing, ok := r.Get(cmd.NationalID); ok {
		r.log.Info(patient.ErrPatientAlreadyExists.Error(), zap.String("national_id", existing.NationalID))
		return existing, false, nil
	}

	p = patient.New(cmd)
	r.patients[p.NationalID] = p

	if err := r.repo.AppendPatient(ctx, p); err != nil {
		delete(r.patients, p.NationalID)
		r.log.Error("failed to persist patient", zap.String("national_id", p.NationalID), zap.Error(err))
		return nil, false, fmt.Errorf("persisting patient: %w", err)
	}

	r.metrics.PatientsRegistered.Inc()
	r.auditSvc.Record(ctx, AuditEntry{
		Role:         domain.RoleReceptionist,
		Action:       domain.ActionPatientCreated,
		ResourceType: "patient",
		ResourceID:   p.NationalID,
	})

	r.log.Info("patient registered", zap.String("national_id", p.NationalID))
	return p, true, nil
}

func validateRegisterCommand(cmd *patient.RegisterCommand) error {
	if strings.TrimSpace(cmd.NationalID) == "" {
		return &ValidationError{Fields: []string{"national_id is required"}}
	}
	return nil
}
