// Package syncstate tracks which annotation signatures have already
// produced a tracker issue, per annotated item.
package syncstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/colonyops/annosync/internal/core/kv"
	"github.com/colonyops/annosync/internal/protocol"
)

const namespace = "syncrec"

// Tracker persists the per-item sets of confirmed signatures. Records
// are only ever written from confirmed remote successes; readers must
// treat read-then-write as advisory (two concurrent runs may both sync
// an unrecorded signature once, which yields a duplicate issue, not
// corrupted state).
type Tracker struct {
	records *kv.TypedKV[[]string]
}

// NewTracker creates a Tracker on top of a KV store.
func NewTracker(store kv.KV) *Tracker {
	return &Tracker{records: kv.Scoped[[]string](store, namespace)}
}

// Synced returns the signatures previously confirmed for an item.
// An item that was never synced yields an empty slice.
func (t *Tracker) Synced(ctx context.Context, itemID string) ([]string, error) {
	sigs, err := t.records.Get(ctx, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sync record %q: %w", itemID, err)
	}
	return sigs, nil
}

// Mark adds signatures to an item's record, preserving existing order
// and keeping each signature at most once.
func (t *Tracker) Mark(ctx context.Context, itemID string, sigs ...string) error {
	if len(sigs) == 0 {
		return nil
	}

	existing, err := t.Synced(ctx, itemID)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}

	for _, s := range sigs {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		existing = append(existing, s)
	}

	if err := t.records.Set(ctx, itemID, existing); err != nil {
		return fmt.Errorf("write sync record %q: %w", itemID, err)
	}

	return nil
}

// Apply records every succeeded result from a batch response and
// returns how many signatures were newly confirmed. Failed results are
// left unconfirmed so a later run retries them.
func (t *Tracker) Apply(ctx context.Context, results []protocol.IssueResult) (int, error) {
	confirmed := 0

	// Group per item so each record is rewritten once.
	byItem := make(map[string][]string)
	var order []string
	for _, res := range results {
		if !res.Succeeded() {
			continue
		}
		if _, ok := byItem[res.NodeID]; !ok {
			order = append(order, res.NodeID)
		}
		byItem[res.NodeID] = append(byItem[res.NodeID], res.Signature)
		confirmed++
	}

	for _, itemID := range order {
		if err := t.Mark(ctx, itemID, byItem[itemID]...); err != nil {
			return confirmed, err
		}
	}

	return confirmed, nil
}

// Reset clears an item's record, overwriting it with an empty set.
func (t *Tracker) Reset(ctx context.Context, itemID string) error {
	if err := t.records.Set(ctx, itemID, []string{}); err != nil {
		return fmt.Errorf("reset sync record %q: %w", itemID, err)
	}
	return nil
}

// ResetAll clears the records of every tracked item and returns how
// many were cleared.
func (t *Tracker) ResetAll(ctx context.Context) (int, error) {
	keys, err := t.records.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sync records: %w", err)
	}

	for _, itemID := range keys {
		if err := t.Reset(ctx, itemID); err != nil {
			return 0, err
		}
	}

	return len(keys), nil
}

// All returns every tracked item ID with its confirmed signatures.
func (t *Tracker) All(ctx context.Context) (map[string][]string, error) {
	keys, err := t.records.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sync records: %w", err)
	}

	out := make(map[string][]string, len(keys))
	for _, itemID := range keys {
		sigs, err := t.Synced(ctx, itemID)
		if err != nil {
			return nil, err
		}
		out[itemID] = sigs
	}

	return out, nil
}
