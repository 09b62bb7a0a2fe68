package xmlstore

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/encounter"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/metrics"
)

const (
	docPatients   = "patients"
	docEncounters = "encounters"
)

var bufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// Store keeps patients and encounters in two XML documents. Every write
// re-serializes the whole document. It assumes exclusive single-process
// access to both files.
type Store struct {
	patientsPath   string
	encountersPath string
	slowWrite      time.Duration

	log     *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

var (
	_ patient.Repository   = (*Store)(nil)
	_ encounter.Repository = (*Store)(nil)
)

// New returns a store for the configured documents. m may be nil.
func New(cfg config.StoreConfig, m *metrics.Collector, log *zap.Logger) *Store {
	return &Store{
		patientsPath:   cfg.PatientsPath(),
		encountersPath: cfg.EncountersPath(),
		slowWrite:      cfg.SlowWriteThreshold,
		log:            log.Named("xmlstore"),
		metrics:        m,
		tracer:         otel.Tracer("clinicdesk/xmlstore"),
	}
}

// EnsureInitialized creates any missing document with an empty list under its
// root element. Existing documents are left untouched.
func (s *Store) EnsureInitialized(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "xmlstore.EnsureInitialized")
	defer span.End()

	docs := []struct {
		name string
		path string
		doc  any
	}{
		{docPatients, s.patientsPath, &patientsDocument{}},
		{docEncounters, s.encountersPath, &encountersDocument{}},
	}

	for _, d := range docs {
		_, err := os.Stat(d.path)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fail(span, fmt.Errorf("checking %s document: %w", d.name, err))
		}

		if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
			return fail(span, fmt.Errorf("creating data directory: %w", err))
		}
		if err := s.writeDocument(ctx, d.name, d.path, d.doc); err != nil {
			return fail(span, err)
		}
		s.log.Info("document created", zap.String("document", d.name), zap.String("path", d.path))
	}

	return nil
}

func (s *Store) LoadPatients(ctx context.Context) (map[string]*patient.Patient, error) {
	ctx, span := s.tracer.Start(ctx, "xmlstore.LoadPatients")
	defer span.End()

	doc, err := s.readPatients(ctx)
	if err != nil {
		return nil, fail(span, err)
	}

	patients := make(map[string]*patient.Patient, len(doc.Entries))
	for i, entry := range doc.Entries {
		p, err := entry.toPatient(i)
		if err != nil {
			return nil, fail(span, err)
		}
		patients[p.NationalID] = p
	}

	span.SetAttributes(attribute.Int("patients.count", len(patients)))
	return patients, nil
}

func (s *Store) AppendPatient(ctx context.Context, p *patient.Patient) error {
	ctx, span := s.tracer.Start(ctx, "xmlstore.AppendPatient")
	defer span.End()

	doc, err := s.readPatients(ctx)
	if err != nil {
		return fail(span, err)
	}

	doc.Entries = append(doc.Entries, toPatientEntry(p))
	if err := s.writeDocument(ctx, docPatients, s.patientsPath, doc); err != nil {
		return fail(span, err)
	}

	span.SetAttributes(attribute.Int("patients.count", len(doc.Entries)))
	return nil
}

func (s *Store) LoadEncounters(ctx context.Context) ([]*encounter.Encounter, error) {
	ctx, span := s.tracer.Start(ctx, "xmlstore.LoadEncounters")
	defer span.End()

	doc, err := s.readEncounters(ctx)
	if err != nil {
		return nil, fail(span, err)
	}

	encounters, err := doc.encounters()
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int("encounters.count", len(encounters)))
	return encounters, nil
}

func (s *Store) AppendEncounter(ctx context.Context, e *encounter.Encounter) error {
	ctx, span := s.tracer.Start(ctx, "xmlstore.AppendEncounter")
	defer span.End()

	doc, err := s.readEncounters(ctx)
	if err != nil {
		return fail(span, err)
	}

	doc.Entries = append(doc.Entries, toEncounterEntry(e))
	if err := s.writeDocument(ctx, docEncounters, s.encountersPath, doc); err != nil {
		return fail(span, err)
	}

	span.SetAttributes(attribute.Int("encounters.count", len(doc.Entries)))
	return nil
}

// UpdateFirstEncounter fills the outcome of the first encounter in document
// order and rewrites the document.
func (s *Store) UpdateFirstEncounter(ctx context.Context, o encounter.Outcome) (*encounter.Encounter, error) {
	updated, err := s.UpdateEncounterAt(ctx, 0, o)
	if errors.Is(err, encounter.ErrEncounterNotFound) {
		return nil, encounter.ErrNoEncounters
	}
	return updated, err
}

func (s *Store) UpdateEncounterAt(ctx context.Context, index int, o encounter.Outcome) (*encounter.Encounter, error) {
	ctx, span := s.tracer.Start(ctx, "xmlstore.UpdateEncounterAt", trace.WithAttributes(
		attribute.Int("encounter.index", index),
	))
	defer span.End()

	doc, err := s.readEncounters(ctx)
	if err != nil {
		return nil, fail(span, err)
	}

	// Parse everything so a damaged document is reported rather than rewritten.
	encounters, err := doc.encounters()
	if err != nil {
		return nil, fail(span, err)
	}
	if index < 0 || index >= len(encounters) {
		return nil, encounter.ErrEncounterNotFound
	}

	doc.Entries[index].setOutcome(o)
	if err := s.writeDocument(ctx, docEncounters, s.encountersPath, doc); err != nil {
		return nil, fail(span, err)
	}

	updated := encounters[index]
	updated.Close(o)
	return updated, nil
}

func (d *encountersDocument) encounters() ([]*encounter.Encounter, error) {
	encounters := make([]*encounter.Encounter, 0, len(d.Entries))
	for i, entry := range d.Entries {
		e, err := entry.toEncounter(i)
		if err != nil {
			return nil, err
		}
		encounters = append(encounters, e)
	}
	return encounters, nil
}

func (s *Store) readPatients(ctx context.Context) (*patientsDocument, error) {
	doc := &patientsDocument{}
	if err := s.readDocument(ctx, docPatients, s.patientsPath, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) readEncounters(ctx context.Context) (*encountersDocument, error) {
	doc := &encountersDocument{}
	if err := s.readDocument(ctx, docEncounters, s.encountersPath, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) readDocument(ctx context.Context, name, path string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s document: %w", name, err)
	}
	if err := xml.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, path, err)
	}
	return nil
}

// writeDocument serializes doc to a temp file next to path and renames it into
// place, so readers only ever see a complete document.
func (s *Store) writeDocument(ctx context.Context, name, path string, doc any) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		s.observeWrite(name, elapsed, err)
		if err == nil && s.slowWrite > 0 && elapsed > s.slowWrite {
			s.log.Warn("slow document write",
				zap.String("document", name),
				zap.Duration("duration", elapsed),
			)
		}
	}()

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding %s document: %w", name, err)
	}
	buf.WriteByte('\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s document: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s document: %w", name, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s document: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s document: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s document: %w", name, err)
	}

	s.log.Debug("document written",
		zap.String("document", name),
		zap.Int("bytes", buf.Len()),
	)
	return nil
}

func (s *Store) observeWrite(name string, elapsed time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.DocumentWrites.WithLabelValues(name, result).Inc()
	s.metrics.DocumentWriteDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
