package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/annosync/internal/client/transport"
	"github.com/colonyops/annosync/internal/client/updatecheck"
	"github.com/colonyops/annosync/internal/core/annotation"
	"github.com/colonyops/annosync/internal/core/collector"
	"github.com/colonyops/annosync/internal/protocol"
	"github.com/colonyops/annosync/pkg/iojson"
	"github.com/colonyops/annosync/pkg/randid"
)

type SyncCmd struct {
	flags  *Flags
	reader iojson.FileReader[annotation.Export]

	document bool
	category string
	resync   bool
	dryRun   bool
}

// NewSyncCmd creates a new sync command.
func NewSyncCmd(flags *Flags) *SyncCmd {
	return &SyncCmd{flags: flags}
}

// syncSummary is the JSON document printed after a run.
type syncSummary struct {
	Batch     string                 `json:"batch"`
	Stats     collector.Stats        `json:"stats"`
	Created   int                    `json:"created"`
	Failed    int                    `json:"failed"`
	Confirmed int                    `json:"confirmed"`
	Results   []protocol.IssueResult `json:"results,omitempty"`
}

// Register adds the sync command to the application.
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Create tracker issues from design annotations",
		UsageText: "annosync sync [options] < export.json",
		Description: `Reads an annotation export (from a file or stdin), collects the
annotations in the target category that have not been synced before,
and submits them to the sync service as one batch.

By default only the export's current page is scanned; use --document
to scan the whole file. Annotations are deduplicated by a content
signature, so re-running sync on the same export never creates
duplicate issues.

Examples:
  annosync sync -f export.json
  annosync sync --document -f export.json
  annosync sync --category "Accessibility" < export.json
  annosync sync --dry-run -f export.json`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
			&cli.BoolFlag{
				Name:        "document",
				Aliases:     []string{"d"},
				Usage:       "scan the whole document instead of the current page",
				Destination: &cmd.document,
			},
			&cli.StringFlag{
				Name:        "category",
				Usage:       "annotation category to sync (overrides config)",
				Destination: &cmd.category,
			},
			&cli.BoolFlag{
				Name:        "resync",
				Usage:       "submit annotations even when already recorded as synced",
				Destination: &cmd.resync,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "print the batch that would be submitted and exit",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	if err := cfg.RequireSyncTarget(); err != nil {
		return err
	}

	export, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	scope := annotation.ScopeCurrentPage
	if cmd.document {
		scope = annotation.ScopeDocument
	}

	coll := collector.New(annotation.NewFileSource(export), cmd.flags.Tracker, cfg)
	batch, stats, err := coll.Collect(ctx, collector.Options{
		Scope:      scope,
		Category:   cmd.category,
		SkipSynced: !cmd.resync,
	})
	if err != nil {
		return err
	}

	batchID := randid.Generate(6)

	if cmd.dryRun {
		return iojson.Write(struct {
			Batch  string                  `json:"batch"`
			Stats  collector.Stats         `json:"stats"`
			Issues []protocol.IssueRequest `json:"issues"`
		}{Batch: batchID, Stats: stats, Issues: batch})
	}

	if len(batch) == 0 {
		return iojson.Write(syncSummary{Batch: batchID, Stats: stats})
	}

	client := transport.New(cfg.Endpoint, cfg.SharedSecret, cfg.Timeout())
	outcome := client.Send(ctx, protocol.SyncRequest{
		Owner:         cfg.Owner,
		Repo:          cfg.Repo,
		Issues:        batch,
		ProjectName:   cfg.Project.Name,
		ProjectOwner:  cfg.Project.Owner,
		ProjectNumber: cfg.Project.Number,
	})

	switch outcome.Kind {
	case transport.OutcomeUnreachable:
		if outcome.Reason == transport.ReasonTimeout {
			return fmt.Errorf("sync service did not respond in time; nothing was recorded, re-run to retry")
		}
		return fmt.Errorf("sync service unreachable: %s", outcome.Reason)
	case transport.OutcomeRejected:
		return fmt.Errorf("sync service rejected the batch (status %d): %s", outcome.Status, outcome.Message)
	}

	resp := outcome.Response

	// Only remotely-confirmed issues become local sync records; failed
	// items stay eligible for the next run.
	confirmed, err := cmd.flags.Tracker.Apply(ctx, resp.Results)
	if err != nil {
		return fmt.Errorf("record confirmed issues: %w", err)
	}

	if err := iojson.Write(syncSummary{
		Batch:     batchID,
		Stats:     stats,
		Created:   resp.Created,
		Failed:    resp.Failed,
		Confirmed: confirmed,
		Results:   resp.Results,
	}); err != nil {
		return err
	}

	cmd.notifyUpdate(ctx)

	if resp.Failed > 0 {
		return fmt.Errorf("%d of %d issues failed; failed items will be retried on the next run", resp.Failed, len(batch))
	}

	return nil
}

// notifyUpdate is best-effort and never affects the sync result.
func (cmd *SyncCmd) notifyUpdate(ctx context.Context) {
	result, err := updatecheck.Check(ctx, cmd.flags.Store, cmd.flags.Version)
	if err != nil || result == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "\nA new version of annosync is available: %s -> %s\n", result.Current, result.Latest)
}
