// Package collector walks an annotated-item source and builds the
// issue batch for one sync run.
package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/colonyops/annosync/internal/core/annotation"
	"github.com/colonyops/annosync/internal/core/config"
	"github.com/colonyops/annosync/internal/core/logging"
	"github.com/colonyops/annosync/internal/core/signature"
	"github.com/colonyops/annosync/internal/core/syncstate"
	"github.com/colonyops/annosync/internal/protocol"
)

const (
	emptyBodyPlaceholder  = "_No annotation text provided._"
	noPropertyPlaceholder = "- none"
)

// Options control one collection run.
type Options struct {
	Scope annotation.Scope
	// Category overrides the configured default category.
	Category string
	// SkipSynced drops annotations whose signature is already recorded.
	SkipSynced bool
}

// Stats summarizes what a collection run saw.
type Stats struct {
	Scanned   int `json:"scanned"`
	Skipped   int `json:"skipped"`
	Collected int `json:"collected"`
}

// Collector builds transmission batches. It never writes state; sync
// records are only updated after remote confirmation.
type Collector struct {
	source  annotation.Source
	tracker *syncstate.Tracker
	cfg     *config.Config
	log     zerolog.Logger
}

// New creates a Collector.
func New(source annotation.Source, tracker *syncstate.Tracker, cfg *config.Config) *Collector {
	return &Collector{
		source:  source,
		tracker: tracker,
		cfg:     cfg,
		log:     logging.Component("collector"),
	}
}

// Collect walks the source in traversal order and returns one
// IssueRequest per not-yet-synced annotation in the target category.
func (c *Collector) Collect(ctx context.Context, opts Options) ([]protocol.IssueRequest, Stats, error) {
	var stats Stats

	category, err := c.resolveCategory(opts.Category)
	if err != nil {
		return nil, stats, err
	}

	items, err := c.source.Items(ctx, opts.Scope)
	if err != nil {
		return nil, stats, fmt.Errorf("walk source: %w", err)
	}

	var batch []protocol.IssueRequest
	for _, item := range items {
		stats.Scanned++

		var synced map[string]struct{}
		if opts.SkipSynced {
			sigs, err := c.tracker.Synced(ctx, item.ID)
			if err != nil {
				return nil, stats, err
			}
			synced = make(map[string]struct{}, len(sigs))
			for _, s := range sigs {
				synced[s] = struct{}{}
			}
		}

		for _, ann := range item.Annotations {
			if !matchesCategory(ann, category) {
				continue
			}

			sig := signature.Compute(item.ID, ann.CategoryID, ann.Body)
			if _, done := synced[sig]; done {
				stats.Skipped++
				c.log.Debug().Str("node", item.ID).Str("sig", sig).Msg("already synced, skipping")
				continue
			}

			batch = append(batch, protocol.IssueRequest{
				Title:     c.title(item, category),
				Body:      c.body(item, ann),
				Labels:    c.labels(item),
				NodeID:    item.ID,
				Signature: sig,
			})
			stats.Collected++
		}
	}

	c.log.Info().
		Str("scope", opts.Scope.String()).
		Int("scanned", stats.Scanned).
		Int("skipped", stats.Skipped).
		Int("collected", stats.Collected).
		Msg("batch collected")

	return batch, stats, nil
}

// resolveCategory maps the requested category to the source's
// definition when the source knows its categories. An unknown category
// aborts the run before any network call.
func (c *Collector) resolveCategory(requested string) (annotation.Category, error) {
	name := requested
	if name == "" {
		name = c.cfg.Category
	}
	if name == "" {
		return annotation.Category{}, fmt.Errorf("no annotation category configured")
	}

	if resolver, ok := c.source.(annotation.CategoryResolver); ok {
		cat, found := resolver.ResolveCategory(name)
		if !found {
			return annotation.Category{}, fmt.Errorf("annotation category %q not found in source", name)
		}
		return cat, nil
	}

	return annotation.Category{ID: name, Name: name}, nil
}

func matchesCategory(ann annotation.Annotation, category annotation.Category) bool {
	return ann.CategoryID == category.ID
}

func (c *Collector) title(item annotation.Item, category annotation.Category) string {
	return fmt.Sprintf("[%s] %s", category.Name, item.DisplayName())
}

// body renders the annotation text, a permanent deep link to the item,
// and the item's structured properties as a labeled list.
func (c *Collector) body(item annotation.Item, ann annotation.Annotation) string {
	var b strings.Builder

	text := strings.TrimSpace(ann.Body)
	if text == "" {
		text = emptyBodyPlaceholder
	}
	b.WriteString(text)
	b.WriteString("\n")

	if c.cfg.LinkBase != "" {
		fmt.Fprintf(&b, "\n[View in design file](%s?node-id=%s)\n", c.cfg.LinkBase, url.QueryEscape(item.ID))
	}

	b.WriteString("\n**Properties**\n")
	wrote := false
	for _, prop := range item.Properties {
		line, ok := annotation.FormatProperty(prop)
		if !ok {
			continue
		}
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
		wrote = true
	}
	if !wrote {
		b.WriteString(noPropertyPlaceholder)
		b.WriteString("\n")
	}

	return b.String()
}

// labels combines the base labels with every label rule whose pattern
// matches the item's document path, deduplicated in order.
func (c *Collector) labels(item annotation.Item) []string {
	var out []string
	seen := make(map[string]struct{})

	add := func(labels []string) {
		for _, l := range labels {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}

	add(c.cfg.Labels)
	for _, rule := range c.cfg.LabelRules {
		// Patterns are validated at config load.
		if ok, _ := doublestar.Match(rule.Pattern, item.Path); ok {
			add(rule.Labels)
		}
	}

	return out
}
