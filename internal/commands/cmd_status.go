package commands

import (
	"context"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/annosync/internal/core/annotation"
	"github.com/colonyops/annosync/pkg/iojson"
)

type StatusCmd struct {
	flags  *Flags
	reader iojson.FileReader[annotation.Export]
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

type statusEntry struct {
	NodeID     string   `json:"nodeId"`
	Name       string   `json:"name,omitempty"`
	Signatures []string `json:"signatures"`
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show which annotations have been synced",
		UsageText: "annosync status [-f export.json]",
		Description: `Prints every annotated item with a sync record, with the confirmed
annotation signatures.

When an export file is provided, item names from the export are
included so records can be matched back to the design file.

Examples:
  annosync status
  annosync status -f export.json`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	records, err := cmd.flags.Tracker.All(ctx)
	if err != nil {
		return err
	}

	var source *annotation.FileSource
	if c.IsSet("file") {
		export, err := cmd.reader.Read()
		if err != nil {
			return err
		}
		source = annotation.NewFileSource(export)
	}

	entries := make([]statusEntry, 0, len(records))
	for nodeID, sigs := range records {
		entry := statusEntry{NodeID: nodeID, Signatures: sigs}
		if source != nil {
			if item, ok := source.Lookup(nodeID); ok {
				entry.Name = item.DisplayName()
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].NodeID < entries[j].NodeID })

	return iojson.Write(entries)
}
