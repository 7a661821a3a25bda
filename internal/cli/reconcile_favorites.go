package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/conduit/internal/audit"
	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/database/articles"
	auditRepo "github.com/mrlokans/conduit/internal/database/audit"
	"github.com/mrlokans/conduit/internal/logging"
)

// ReconcileFavoritesCommand recomputes every article's favorites count from
// the favorites table, bypassing the task queue.
type ReconcileFavoritesCommand struct {
	Timeout time.Duration

	database databaseFlags
	out      io.Writer
}

func NewReconcileFavoritesCommand(cfg *config.Config) *ReconcileFavoritesCommand {
	return &ReconcileFavoritesCommand{
		database: newDatabaseFlags(cfg.Database),
		out:      os.Stdout,
	}
}

func (cmd *ReconcileFavoritesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reconcile-favorites", flag.ContinueOnError)

	fs.DurationVar(&cmd.Timeout, "timeout", 5*time.Minute, "Abort if reconciliation takes longer than this")
	cmd.database.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reconcile-favorites [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Recompute cached favorite counts from the favorites table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ReconcileFavoritesCommand) Run() error {
	db, err := cmd.database.open()
	if err != nil {
		return err
	}
	defer db.Close()

	auditor := audit.NewService(auditRepo.NewRepository(db.DB), logging.Nop())
	defer auditor.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	corrected, err := articles.NewRepository(db.DB).ReconcileFavoriteCounts(ctx)
	auditor.LogReconcile(corrected, err)
	if err != nil {
		return fmt.Errorf("failed to reconcile favorite counts: %w", err)
	}

	fmt.Fprintf(cmd.out, "Reconciled favorite counts: %d article(s) corrected\n", corrected)
	return nil
}
