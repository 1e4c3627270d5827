package annotation

import (
	"context"
)

// Export is the JSON document produced by the design-tool exporter: a
// flat list of annotated items plus the document metadata needed for
// deep links and current-page scoping.
type Export struct {
	FileKey     string     `json:"fileKey"`
	FileName    string     `json:"fileName"`
	CurrentPage string     `json:"currentPage"`
	Categories  []Category `json:"categories"`
	Items       []Item     `json:"items"`
}

// FileSource is a Source over an export file.
type FileSource struct {
	export Export
}

var (
	_ Source           = (*FileSource)(nil)
	_ CategoryResolver = (*FileSource)(nil)
)

// NewFileSource wraps an already-decoded export.
func NewFileSource(export Export) *FileSource {
	return &FileSource{export: export}
}

// Items implements Source. ScopeCurrentPage filters on the export's
// current-page marker and fails when the export has none.
func (f *FileSource) Items(ctx context.Context, scope Scope) ([]Item, error) {
	if scope == ScopeDocument {
		return f.export.Items, nil
	}

	if f.export.CurrentPage == "" {
		return nil, ErrNoCurrentPage
	}

	var items []Item
	for _, it := range f.export.Items {
		if it.Page == f.export.CurrentPage {
			items = append(items, it)
		}
	}

	return items, nil
}

// ResolveCategory implements CategoryResolver. Matches by ID first,
// then by exact name.
func (f *FileSource) ResolveCategory(nameOrID string) (Category, bool) {
	for _, c := range f.export.Categories {
		if c.ID == nameOrID {
			return c, true
		}
	}
	for _, c := range f.export.Categories {
		if c.Name == nameOrID {
			return c, true
		}
	}
	return Category{}, false
}

// Lookup returns the item with the given ID.
func (f *FileSource) Lookup(id string) (Item, bool) {
	for _, it := range f.export.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// FileKey returns the design file key for deep links.
func (f *FileSource) FileKey() string {
	return f.export.FileKey
}
