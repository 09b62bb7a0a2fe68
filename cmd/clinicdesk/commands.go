package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/console"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/encounter"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/ticket"
	v1 "github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/service"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the interactive desk menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			return a.run(ctx, cmd)
		},
	}
}

func (a *app) run(ctx context.Context, cmd *cobra.Command) error {
	if err := a.store.EnsureInitialized(ctx); err != nil {
		return err
	}

	audit := service.NewAuditService(a.sessionID, a.metrics, a.log)
	registry := service.NewPatientRegistry(a.store, audit, a.metrics, a.log)
	if err := registry.Hydrate(ctx); err != nil {
		return err
	}
	desk := service.NewDesk(ticket.NewQueue(), registry, a.store, audit, a.metrics, a.cfg.Workflow, a.log)

	if a.cfg.Ops.Enabled() {
		ops := v1.NewServer(a.cfg.Ops, v1.NewRouter(a.cfg.App, desk.Queue(), a.registry, a.log), a.log)
		if err := ops.Start(); err != nil {
			return err
		}
		defer func() {
			if err := ops.Shutdown(context.Background()); err != nil {
				a.log.Warn("ops endpoint shutdown failed", zap.Error(err))
			}
		}()
	}

	a.log.Info("desk started",
		zap.String("data_dir", a.cfg.Store.DataDir),
		zap.String("close_policy", string(a.cfg.Workflow.ClosePolicy)),
		zap.Int("patients", registry.Len()),
	)

	menu := console.NewMenu(a.cfg.App.Name, desk, cmd.InOrStdin(), cmd.OutOrStdout(), a.log)
	done := make(chan error, 1)
	go func() { done <- menu.Run(ctx) }()

	// A read from the terminal cannot be interrupted, so a signal ends the
	// process without waiting for the menu.
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		a.log.Info("interrupted, shutting down")
		return nil
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create empty patients and encounters documents if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if err := a.store.EnsureInitialized(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "documents ready in %s\n", a.cfg.Store.DataDir)
			return nil
		},
	}
}

func encountersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encounters",
		Short: "Print the encounters document",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			all, err := a.store.LoadEncounters(cmd.Context())
			if err != nil {
				return err
			}
			return printEncounters(cmd, all)
		},
	}
}

func printEncounters(cmd *cobra.Command, all []*encounter.Encounter) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCPF\tOPENED\tTICKET\tREASON\tDIAGNOSIS\tSTATUS")
	for i, e := range all {
		status := "closed"
		if e.IsOpen() {
			status = "open"
		}
		ticketCol := "-"
		if e.TicketNumber > 0 {
			ticketCol = fmt.Sprint(e.TicketNumber)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i, e.PatientNationalID, e.Timestamp(), ticketCol, e.Reason, e.Diagnosis, status)
	}
	return w.Flush()
}
