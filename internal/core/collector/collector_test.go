package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/annosync/internal/core/annotation"
	"github.com/colonyops/annosync/internal/core/config"
	"github.com/colonyops/annosync/internal/core/kv"
	"github.com/colonyops/annosync/internal/core/signature"
	"github.com/colonyops/annosync/internal/core/syncstate"
)

var testCategories = []annotation.Category{
	{ID: "cat-qa", Name: "QA"},
	{ID: "cat-a11y", Name: "Accessibility"},
}

func testExport(items ...annotation.Item) annotation.Export {
	return annotation.Export{
		FileKey:     "AbCdEf123",
		FileName:    "Design System",
		CurrentPage: "Checkout",
		Categories:  testCategories,
		Items:       items,
	}
}

func testItem() annotation.Item {
	return annotation.Item{
		ID:            "1:2",
		Name:          "Rectangle 14",
		Page:          "Checkout",
		Path:          "Checkout/Payment/Button",
		ComponentName: "PrimaryButton",
		Annotations: []annotation.Annotation{
			{CategoryID: "cat-qa", Body: "Button color is off-brand"},
		},
		Properties: []annotation.Property{
			{Kind: "spacing", Value: "8"},
			{Kind: "alignment", Value: "center"},
		},
	}
}

func newCollector(t *testing.T, cfg *config.Config, export annotation.Export) (*Collector, *syncstate.Tracker) {
	t.Helper()
	if cfg == nil {
		c := config.DefaultConfig()
		c.LinkBase = "https://www.figma.com/design/AbCdEf123"
		cfg = &c
	}
	tracker := syncstate.NewTracker(kv.NewMemory())
	return New(annotation.NewFileSource(export), tracker, cfg), tracker
}

func TestCollect_BuildsRequests(t *testing.T) {
	ctx := context.Background()
	c, _ := newCollector(t, nil, testExport(testItem()))

	batch, stats, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage, SkipSynced: true})
	require.NoError(t, err)
	require.Len(t, batch, 1)

	req := batch[0]
	assert.Equal(t, "[QA] PrimaryButton", req.Title)
	assert.Equal(t, "1:2", req.NodeID)
	assert.Equal(t, signature.Compute("1:2", "cat-qa", "Button color is off-brand"), req.Signature)
	assert.Contains(t, req.Body, "Button color is off-brand")
	assert.Contains(t, req.Body, "https://www.figma.com/design/AbCdEf123?node-id=1%3A2")
	assert.Contains(t, req.Body, "- Spacing: 8px")
	assert.Contains(t, req.Body, "- Alignment: center")
	assert.Equal(t, Stats{Scanned: 1, Skipped: 0, Collected: 1}, stats)
}

func TestCollect_FiltersByCategory(t *testing.T) {
	ctx := context.Background()
	item := testItem()
	item.Annotations = append(item.Annotations, annotation.Annotation{
		CategoryID: "cat-a11y",
		Body:       "Contrast too low",
	})
	c, _ := newCollector(t, nil, testExport(item))

	batch, _, err := c.Collect(ctx, Options{
		Scope:    annotation.ScopeCurrentPage,
		Category: "Accessibility",
	})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Contains(t, batch[0].Body, "Contrast too low")
}

func TestCollect_UnknownCategoryAborts(t *testing.T) {
	ctx := context.Background()
	c, _ := newCollector(t, nil, testExport(testItem()))

	_, _, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage, Category: "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCollect_SkipsAlreadySynced(t *testing.T) {
	ctx := context.Background()
	item := testItem()
	c, tracker := newCollector(t, nil, testExport(item))

	sig := signature.Compute(item.ID, "cat-qa", item.Annotations[0].Body)
	require.NoError(t, tracker.Mark(ctx, item.ID, sig))

	batch, stats, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage, SkipSynced: true})
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.Equal(t, 1, stats.Skipped)

	// With SkipSynced disabled the annotation is collected again.
	batch, _, err = c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage, SkipSynced: false})
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}

func TestCollect_CurrentPageScope(t *testing.T) {
	ctx := context.Background()
	other := testItem()
	other.ID = "9:9"
	other.Page = "Landing"
	c, _ := newCollector(t, nil, testExport(testItem(), other))

	batch, _, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "1:2", batch[0].NodeID)

	batch, _, err = c.Collect(ctx, Options{Scope: annotation.ScopeDocument})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestCollect_EmptyBodyPlaceholder(t *testing.T) {
	ctx := context.Background()
	item := testItem()
	item.Annotations[0].Body = "   "
	c, _ := newCollector(t, nil, testExport(item))

	batch, _, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Contains(t, batch[0].Body, emptyBodyPlaceholder)
}

func TestCollect_NoPropertiesPlaceholder(t *testing.T) {
	ctx := context.Background()
	item := testItem()
	item.Properties = []annotation.Property{
		{Kind: "mystery-kind"}, // unrecognized and valueless: omitted
	}
	c, _ := newCollector(t, nil, testExport(item))

	batch, _, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Contains(t, batch[0].Body, noPropertyPlaceholder)
}

func TestCollect_TitleFallsBackToFrameThenName(t *testing.T) {
	ctx := context.Background()
	item := testItem()
	item.ComponentName = ""
	item.FrameName = "Payment Frame"
	c, _ := newCollector(t, nil, testExport(item))

	batch, _, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "[QA] Payment Frame", batch[0].Title)
}

func TestCollect_LabelRules(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Labels = []string{"design"}
	cfg.LabelRules = []config.LabelRule{
		{Pattern: "Checkout/**", Labels: []string{"checkout", "design"}},
		{Pattern: "Landing/**", Labels: []string{"landing"}},
	}
	c, _ := newCollector(t, &cfg, testExport(testItem()))

	batch, _, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, []string{"design", "checkout"}, batch[0].Labels)
}

func TestCollect_SignatureDiffersPerBody(t *testing.T) {
	ctx := context.Background()
	item := testItem()
	item.Annotations = append(item.Annotations, annotation.Annotation{
		CategoryID: "cat-qa",
		Body:       "A second, different note",
	})
	c, _ := newCollector(t, nil, testExport(item))

	batch, _, err := c.Collect(ctx, Options{Scope: annotation.ScopeCurrentPage})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.NotEqual(t, batch[0].Signature, batch[1].Signature)
}
