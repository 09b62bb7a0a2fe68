// Package console is the terminal front end of the desk: a numbered menu on
// stdin/stdout that also answers the workflow's prompts.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/encounter"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/ticket"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/service"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/store/xmlstore"
)

const (
	choiceIssueTicket = "1"
	choiceBeginVisit  = "2"
	choiceCloseVisit  = "3"
	choiceExit        = "4"
)

type Menu struct {
	title string
	desk  *service.Desk
	in    *bufio.Scanner
	out   io.Writer
	log   *zap.Logger
}

func NewMenu(title string, desk *service.Desk, in io.Reader, out io.Writer, log *zap.Logger) *Menu {
	return &Menu{
		title: title,
		desk:  desk,
		in:    bufio.NewScanner(in),
		out:   out,
		log:   log.Named("console"),
	}
}

// Ask prints the prompt and returns the next input line. End of input is
// reported as io.EOF.
func (m *Menu) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(m.out, "%s: ", prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(m.in.Text(), "\r"), nil
}

func (m *Menu) Announce(_ context.Context, msg string) {
	fmt.Fprintln(m.out, msg)
}

// Run loops over the menu until the operator exits, input ends or ctx is
// canceled. A malformed document stops the loop with an error.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.printMenu()

		choice, err := m.Ask(ctx, "Choose an option")
		if err != nil {
			return m.stop(err)
		}

		switch strings.TrimSpace(choice) {
		case choiceIssueTicket:
			n := m.desk.IssueTicket(ctx)
			m.Announce(ctx, fmt.Sprintf("Your ticket is: %d", n))

		case choiceBeginVisit:
			started, err := m.desk.BeginVisit(ctx, m)
			if err != nil {
				if stop := m.handle(err); stop != nil {
					return stop
				}
				continue
			}
			if started.Registered {
				m.Announce(ctx, "Patient registered.")
			}
			m.Announce(ctx, fmt.Sprintf("%s checked in. Please wait for the practitioner.", started.Patient.Name))

		case choiceCloseVisit:
			if _, err := m.desk.CloseVisit(ctx, m); err != nil {
				if stop := m.handle(err); stop != nil {
					return stop
				}
				continue
			}
			m.Announce(ctx, "Visit closed. Patient released.")

		case choiceExit:
			m.Announce(ctx, "Goodbye!")
			return nil

		default:
			m.Announce(ctx, "Invalid option, try again.")
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintf(m.out, "\n--- %s ---\n", m.title)
	fmt.Fprintln(m.out, "1. Issue ticket")
	fmt.Fprintln(m.out, "2. Call next ticket (reception)")
	fmt.Fprintln(m.out, "3. Call patient (practitioner)")
	fmt.Fprintln(m.out, "4. Exit")
}

// handle reports an operation error to the operator. It returns non-nil when
// the loop must stop.
func (m *Menu) handle(err error) error {
	switch {
	case errors.Is(err, ticket.ErrQueueEmpty):
		fmt.Fprintln(m.out, "No tickets waiting.")
		return nil

	case errors.Is(err, encounter.ErrNoEncounters):
		fmt.Fprintln(m.out, "No encounters to close.")
		return nil

	case errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		return m.stop(err)

	case errors.Is(err, xmlstore.ErrMalformedDocument):
		m.log.Error("document is damaged, stopping", zap.Error(err))
		return err

	default:
		m.log.Warn("operation failed", zap.Error(err))
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return nil
	}
}

// stop turns the end of input into a clean exit.
func (m *Menu) stop(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(m.out)
		return nil
	}
	return err
}
