package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/encounter"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/ticket"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/metrics"
)

// Operator is the person at the desk. Ask blocks until an answer is typed;
// an error from Ask aborts the running operation.
type Operator interface {
	Ask(ctx context.Context, prompt string) (string, error)
	Announce(ctx context.Context, msg string)
}

type VisitStarted struct {
	Ticket     int
	Patient    *patient.Patient
	Registered bool
	Encounter  *encounter.Encounter
}

type VisitClosed struct {
	// Index is the encounter's position in the encounters document.
	Index       int
	PatientName string
	Encounter   *encounter.Encounter
}

// Desk runs the front-desk workflow: the waiting-room queue, reception and
// the practitioner's close-out. It owns all per-process state.
type Desk struct {
	queue      *ticket.Queue
	registry   *PatientRegistry
	encounters encounter.Repository
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
	tracer     trace.Tracer

	closePolicy        config.ClosePolicy
	unknownPatientName string
	now                func() time.Time
}

func NewDesk(
	queue *ticket.Queue,
	registry *PatientRegistry,
	encounters encounter.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	cfg config.WorkflowConfig,
	log *zap.Logger,
) *Desk {
	return &Desk{
		queue:              queue,
		registry:           registry,
		encounters:         encounters,
		auditSvc:           auditSvc,
		metrics:            m,
		log:                log,
		tracer:             otel.Tracer("clinicdesk/service"),
		closePolicy:        cfg.ClosePolicy,
		unknownPatientName: cfg.UnknownPatientName,
		now:                time.Now,
	}
}

func (d *Desk) Queue() *ticket.Queue {
	return d.queue
}

// IssueTicket hands out the next waiting-room ticket.
func (d *Desk) IssueTicket(ctx context.Context) int {
	n := d.queue.Issue()

	d.metrics.TicketsIssued.Inc()
	d.metrics.QueueDepth.Set(float64(d.queue.Len()))
	d.auditSvc.Record(ctx, AuditEntry{
		Role:         domain.RoleKiosk,
		Action:       domain.ActionTicketIssued,
		ResourceType: "ticket",
		ResourceID:   strconv.Itoa(n),
	})

	d.log.Debug("ticket issued", zap.Int("ticket", n))
	return n
}

// BeginVisit serves the next ticket, resolves the patient (registering them if
// unknown) and records an encounter for the stated reason. Returns
// ticket.ErrQueueEmpty without side effects when nobody is waiting. Once the
// ticket is served it is not returned to the queue, even if the operator
// aborts.
func (d *Desk) BeginVisit(ctx context.Context, op Operator) (*VisitStarted, error) {
	ctx, span := d.tracer.Start(ctx, "desk.BeginVisit")
	defer span.End()

	n, err := d.queue.ServeNext()
	if err != nil {
		return nil, err
	}
	d.metrics.TicketsServed.Inc()
	d.metrics.QueueDepth.Set(float64(d.queue.Len()))
	span.SetAttributes(attribute.Int("ticket", n))

	op.Announce(ctx, fmt.Sprintf("Calling ticket %d", n))

	nationalID, err := op.Ask(ctx, "Patient national ID (CPF)")
	if err != nil {
		return nil, fmt.Errorf("reading national ID: %w", err)
	}

	if strings.TrimSpace(nationalID) == "" {
		return nil, &ValidationError{Fields: []string{"national_id is required"}}
	}

	p, known := d.registry.Get(nationalID)
	registered := false
	if !known {
		op.Announce(ctx, fmt.Sprintf("%s, registering", patient.ErrPatientNotFound))

		cmd, err := askRegistration(ctx, op, nationalID)
		if err != nil {
			return nil, err
		}
		p, registered, err = d.registry.Register(ctx, cmd)
		if err != nil {
			return nil, fmt.Errorf("registering patient: %w", err)
		}
	}

	reason, err := op.Ask(ctx, "Reason for visit")
	if err != nil {
		return nil, fmt.Errorf("reading reason: %w", err)
	}

	e := encounter.New(&encounter.OpenCommand{
		PatientNationalID: p.NationalID,
		Reason:            reason,
		TicketNumber:      n,
		OpenedAt:          d.now(),
	})
	if err := d.encounters.AppendEncounter(ctx, e); err != nil {
		d.log.Error("failed to record encounter", zap.Int("ticket", n), zap.Error(err))
		return nil, fmt.Errorf("recording encounter: %w", err)
	}
	p.RecordVisit(e)

	d.metrics.EncountersOpened.Inc()
	d.auditSvc.Record(ctx, AuditEntry{
		Role:         domain.RoleReceptionist,
		Action:       domain.ActionEncounterOpened,
		ResourceType: "encounter",
		ResourceID:   p.NationalID,
		Changes:      map[string]string{"ticket": strconv.Itoa(n)},
	})

	d.log.Info("encounter opened",
		zap.Int("ticket", n),
		zap.String("national_id", p.NationalID),
		zap.Bool("registered", registered),
	)

	return &VisitStarted{Ticket: n, Patient: p, Registered: registered, Encounter: e}, nil
}

// CloseVisit records the practitioner's outcome on the encounter chosen by the
// close policy: the first in document order, or with ClosePolicyFirstOpen the
// first one without an outcome. Returns encounter.ErrNoEncounters with no
// document change when there is nothing to close.
func (d *Desk) CloseVisit(ctx context.Context, op Operator) (*VisitClosed, error) {
	ctx, span := d.tracer.Start(ctx, "desk.CloseVisit", trace.WithAttributes(
		attribute.String("close_policy", string(d.closePolicy)),
	))
	defer span.End()

	all, err := d.encounters.LoadEncounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading encounters: %w", err)
	}
	if len(all) == 0 {
		return nil, encounter.ErrNoEncounters
	}

	index := 0
	if d.closePolicy == config.ClosePolicyFirstOpen {
		if index = encounter.FirstOpen(all); index < 0 {
			return nil, encounter.ErrNoEncounters
		}
	}
	target := all[index]
	span.SetAttributes(attribute.Int("encounter.index", index))

	name := d.unknownPatientName
	p, known := d.registry.Get(target.PatientNationalID)
	if known {
		name = p.Name
	}

	op.Announce(ctx, fmt.Sprintf("Calling patient: %s", name))
	op.Announce(ctx, fmt.Sprintf("Reason for visit: %s", target.Reason))

	outcome, err := askOutcome(ctx, op)
	if err != nil {
		return nil, err
	}

	var updated *encounter.Encounter
	if d.closePolicy == config.ClosePolicyFirstOpen {
		updated, err = d.encounters.UpdateEncounterAt(ctx, index, outcome)
	} else {
		updated, err = d.encounters.UpdateFirstEncounter(ctx, outcome)
	}
	if err != nil {
		d.log.Error("failed to close encounter", zap.Int("index", index), zap.Error(err))
		return nil, fmt.Errorf("closing encounter: %w", err)
	}

	if known {
		for _, h := range p.History {
			if h.TicketNumber == updated.TicketNumber && h.OpenedAt.Equal(updated.OpenedAt) {
				h.Close(outcome)
			}
		}
	}

	d.metrics.EncountersClosed.Inc()
	d.auditSvc.Record(ctx, AuditEntry{
		Role:         domain.RolePractitioner,
		Action:       domain.ActionEncounterClosed,
		ResourceType: "encounter",
		ResourceID:   updated.PatientNationalID,
		Changes:      map[string]string{"index": strconv.Itoa(index), "follow_up": outcome.FollowUp},
	})

	d.log.Info("encounter closed",
		zap.Int("index", index),
		zap.String("national_id", updated.PatientNationalID),
		zap.Bool("patient_known", known),
	)

	return &VisitClosed{Index: index, PatientName: name, Encounter: updated}, nil
}

func askRegistration(ctx context.Context, op Operator, nationalID string) (*patient.RegisterCommand, error) {
	cmd := &patient.RegisterCommand{NationalID: nationalID}

	prompts := []struct {
		prompt string
		dst    *string
	}{
		{"Patient name", &cmd.Name},
		{"Birth date (dd/mm/yyyy)", &cmd.BirthDate},
		{"Address", &cmd.Address},
	}
	for _, p := range prompts {
		answer, err := op.Ask(ctx, p.prompt)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", strings.ToLower(p.prompt), err)
		}
		*p.dst = answer
	}

	phones, err := op.Ask(ctx, "Phone numbers (comma separated)")
	if err != nil {
		return nil, fmt.Errorf("reading phone numbers: %w", err)
	}
	cmd.Phones = strings.Split(phones, ",")

	return cmd, nil
}

func askOutcome(ctx context.Context, op Operator) (encounter.Outcome, error) {
	var o encounter.Outcome

	prompts := []struct {
		prompt string
		dst    *string
	}{
		{"Diagnosis", &o.Diagnosis},
		{"Prescription, if any", &o.Prescription},
		{"Schedule a follow-up? (yes/no)", &o.FollowUp},
	}
	for _, p := range prompts {
		answer, err := op.Ask(ctx, p.prompt)
		if err != nil {
			return encounter.Outcome{}, fmt.Errorf("reading %s: %w", strings.ToLower(p.prompt), err)
		}
		*p.dst = answer
	}

	return o, nil
}
