package xmlstore

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/encounter"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/patient"
)

// ErrMalformedDocument is returned when a document cannot be parsed or an
// entry lacks a required child element.
var ErrMalformedDocument = errors.New("malformed document")

const (
	patientsRoot   = "pacientes"
	encountersRoot = "atendimentos"
)

// Child elements are pointers so an absent element can be told apart from an
// empty one.
type patientsDocument struct {
	XMLName xml.Name       `xml:"pacientes"`
	Entries []patientEntry `xml:"paciente"`
}

type patientEntry struct {
	CPF            *string `xml:"CPF"`
	Nome           *string `xml:"Nome"`
	DataNascimento *string `xml:"DataNascimento"`
	Endereco       *string `xml:"Endereco"`
	Telefones      *string `xml:"Telefones"`
}

type encountersDocument struct {
	XMLName xml.Name         `xml:"atendimentos"`
	Entries []encounterEntry `xml:"atendimento"`
}

type encounterEntry struct {
	PacienteCPF *string `xml:"PacienteCPF"`
	Data        *string `xml:"Data"`
	Motivo      *string `xml:"Motivo"`
	Diagnostico *string `xml:"Diagnóstico"`
	Receita     *string `xml:"Receita"`
	Retorno     *string `xml:"Retorno"`
	Senha       int     `xml:"Senha,omitempty"`
}

func ptr(s string) *string {
	return &s
}

// fieldReader collects the first missing element of an entry.
type fieldReader struct {
	root  string
	index int
	err   error
}

func (r *fieldReader) text(name string, v *string) string {
	if v == nil {
		if r.err == nil {
			r.err = fmt.Errorf("%w: %s entry %d: missing <%s>", ErrMalformedDocument, r.root, r.index, name)
		}
		return ""
	}
	return *v
}

func toPatientEntry(p *patient.Patient) patientEntry {
	return patientEntry{
		CPF:            ptr(p.NationalID),
		Nome:           ptr(p.Name),
		DataNascimento: ptr(p.BirthDate),
		Endereco:       ptr(p.Address),
		Telefones:      ptr(p.JoinedPhones()),
	}
}

func (e patientEntry) toPatient(index int) (*patient.Patient, error) {
	r := &fieldReader{root: patientsRoot, index: index}
	p := &patient.Patient{
		NationalID: r.text("CPF", e.CPF),
		Name:       r.text("Nome", e.Nome),
		BirthDate:  r.text("DataNascimento", e.DataNascimento),
		Address:    r.text("Endereco", e.Endereco),
		Phones:     patient.SplitPhones(r.text("Telefones", e.Telefones)),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func toEncounterEntry(e *encounter.Encounter) encounterEntry {
	return encounterEntry{
		PacienteCPF: ptr(e.PatientNationalID),
		Data:        ptr(e.Timestamp()),
		Motivo:      ptr(e.Reason),
		Diagnostico: ptr(e.Diagnosis),
		Receita:     ptr(e.Prescription),
		Retorno:     ptr(e.FollowUp),
		Senha:       e.TicketNumber,
	}
}

func (e encounterEntry) toEncounter(index int) (*encounter.Encounter, error) {
	r := &fieldReader{root: encountersRoot, index: index}
	enc := &encounter.Encounter{
		PatientNationalID: r.text("PacienteCPF", e.PacienteCPF),
		Reason:            r.text("Motivo", e.Motivo),
		TicketNumber:      e.Senha,
		Outcome: encounter.Outcome{
			Diagnosis:    r.text("Diagnóstico", e.Diagnostico),
			Prescription: r.text("Receita", e.Receita),
			FollowUp:     r.text("Retorno", e.Retorno),
		},
	}
	data := r.text("Data", e.Data)
	if r.err != nil {
		return nil, r.err
	}

	// Only presence of <Data> is required; other formats are kept as text.
	if openedAt, err := time.ParseInLocation(encounter.TimestampLayout, strings.TrimSpace(data), time.Local); err == nil {
		enc.OpenedAt = openedAt
	} else {
		enc.OpenedAtText = data
	}
	return enc, nil
}

func (e *encounterEntry) setOutcome(o encounter.Outcome) {
	e.Diagnostico = ptr(o.Diagnosis)
	e.Receita = ptr(o.Prescription)
	e.Retorno = ptr(o.FollowUp)
}
