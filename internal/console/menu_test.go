package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/ticket"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/service"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/store/xmlstore"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/metrics"
)

type harness struct {
	desk  *service.Desk
	store *xmlstore.Store
	cfg   config.StoreConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := config.StoreConfig{
		DataDir:        t.TempDir(),
		PatientsFile:   "pacientes.xml",
		EncountersFile: "atendimentos.xml",
	}
	log := zap.NewNop()
	m := metrics.NewCollector("test", prometheus.NewRegistry())
	store := xmlstore.New(cfg, m, log)
	require.NoError(t, store.EnsureInitialized(context.Background()))

	audit := service.NewAuditService("console-test", m, log)
	registry := service.NewPatientRegistry(store, audit, m, log)
	require.NoError(t, registry.Hydrate(context.Background()))

	desk := service.NewDesk(ticket.NewQueue(), registry, store, audit, m, config.WorkflowConfig{
		ClosePolicy:        config.ClosePolicyFirst,
		UnknownPatientName: "Unknown",
	}, log)

	return &harness{desk: desk, store: store, cfg: cfg}
}

func (h *harness) run(t *testing.T, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := NewMenu("Clinic", h.desk, strings.NewReader(input), &out, zap.NewNop()).Run(context.Background())
	return out.String(), err
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestMenuIssuesTickets(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, lines("1", "1", "4"))
	require.NoError(t, err)

	assert.Contains(t, out, "--- Clinic ---")
	assert.Contains(t, out, "Your ticket is: 1")
	assert.Contains(t, out, "Your ticket is: 2")
	assert.Contains(t, out, "Goodbye!")
	assert.Equal(t, []int{1, 2}, h.desk.Queue().Waiting())
}

func TestMenuFullVisit(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, lines(
		"1",
		"2", "111", "Ana", "01/01/1990", "Rua A", "1111,2222", "Dor de dente",
		"3", "Cárie", "Amoxicilina", "Sim",
		"4",
	))
	require.NoError(t, err)

	assert.Contains(t, out, "Calling ticket 1")
	assert.Contains(t, out, "Patient registered.")
	assert.Contains(t, out, "Ana checked in.")
	assert.Contains(t, out, "Calling patient: Ana")
	assert.Contains(t, out, "Reason for visit: Dor de dente")
	assert.Contains(t, out, "Visit closed. Patient released.")

	encounters, err := h.store.LoadEncounters(context.Background())
	require.NoError(t, err)
	require.Len(t, encounters, 1)
	assert.Equal(t, "Cárie", encounters[0].Diagnosis)
	assert.Equal(t, "Sim", encounters[0].FollowUp)
}

func TestMenuInformationalConditions(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, lines("2", "3", "4"))
	require.NoError(t, err)

	assert.Contains(t, out, "No tickets waiting.")
	assert.Contains(t, out, "No encounters to close.")
}

func TestMenuInvalidOption(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, lines("9", "", "4"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Invalid option, try again."))
}

func TestMenuEndOfInputExits(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "1\n")
	assert.NoError(t, err)

	// Input ends mid-registration: the served ticket is consumed, nothing is written.
	h = newHarness(t)
	_, err = h.run(t, lines("1", "2", "111"))
	assert.NoError(t, err)
	assert.Empty(t, h.desk.Queue().Waiting())

	encounters, err := h.store.LoadEncounters(context.Background())
	require.NoError(t, err)
	assert.Empty(t, encounters)
}

func TestMenuStopsOnDamagedDocument(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.cfg.DataDir, h.cfg.EncountersFile), []byte("<atendimentos><atendimento>"), 0o644))

	_, err := h.run(t, lines("3", "4"))
	assert.ErrorIs(t, err, xmlstore.ErrMalformedDocument)
}

func TestMenuHonoursCanceledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := NewMenu("Clinic", h.desk, strings.NewReader(lines("1")), &out, zap.NewNop()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.desk.Queue().Waiting())
}
