package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/ticket"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/store/xmlstore"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/metrics"
)

var errScriptExhausted = errors.New("script exhausted")

// scriptedOperator answers prompts from a fixed list and records everything
// it was told.
type scriptedOperator struct {
	answers   []string
	prompts   []string
	announced []string
}

func newOperator(answers ...string) *scriptedOperator {
	return &scriptedOperator{answers: answers}
}

func (o *scriptedOperator) Ask(_ context.Context, prompt string) (string, error) {
	o.prompts = append(o.prompts, prompt)
	if len(o.answers) == 0 {
		return "", fmt.Errorf("%w at %q", errScriptExhausted, prompt)
	}
	answer := o.answers[0]
	o.answers = o.answers[1:]
	return answer, nil
}

func (o *scriptedOperator) Announce(_ context.Context, msg string) {
	o.announced = append(o.announced, msg)
}

type fixture struct {
	store    *xmlstore.Store
	storeCfg config.StoreConfig
	registry *PatientRegistry
	desk     *Desk
	metrics  *metrics.Collector
}

func newFixture(t *testing.T, policy config.ClosePolicy) *fixture {
	t.Helper()

	storeCfg := config.StoreConfig{
		DataDir:        t.TempDir(),
		PatientsFile:   "pacientes.xml",
		EncountersFile: "atendimentos.xml",
	}
	log := zap.NewNop()
	m := metrics.NewCollector("test", prometheus.NewRegistry())

	store := xmlstore.New(storeCfg, m, log)
	require.NoError(t, store.EnsureInitialized(context.Background()))

	audit := NewAuditService("session-test", m, log)
	registry := NewPatientRegistry(store, audit, m, log)
	require.NoError(t, registry.Hydrate(context.Background()))

	desk := NewDesk(ticket.NewQueue(), registry, store, audit, m, config.WorkflowConfig{
		ClosePolicy:        policy,
		UnknownPatientName: "Unknown",
	}, log)

	return &fixture{store: store, storeCfg: storeCfg, registry: registry, desk: desk, metrics: m}
}

// failingPatientRepo fails every append.
type failingPatientRepo struct {
	err error
}

func (r *failingPatientRepo) LoadPatients(context.Context) (map[string]*patient.Patient, error) {
	return map[string]*patient.Patient{}, nil
}

func (r *failingPatientRepo) AppendPatient(context.Context, *patient.Patient) error {
	return r.err
}

func writeDoc(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}
