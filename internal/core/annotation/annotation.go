// Package annotation defines the annotated-item domain model and the
// source abstraction the collector reads from.
package annotation

import (
	"context"
	"fmt"
)

// Scope selects how much of the source a collection run walks.
type Scope int

const (
	// ScopeCurrentPage walks only the page marked current in the source.
	ScopeCurrentPage Scope = iota
	// ScopeDocument walks the entire document. More expensive; must be
	// requested explicitly.
	ScopeDocument
)

func (s Scope) String() string {
	switch s {
	case ScopeDocument:
		return "document"
	default:
		return "current-page"
	}
}

// Category is an annotation category defined by the source document.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Annotation is a categorized note attached to an item.
type Annotation struct {
	CategoryID string `json:"categoryId"`
	Body       string `json:"body"`
}

// Property is a structured value attached to an item, referenced by
// annotations (spacing, alignment, font, ...).
type Property struct {
	Kind  string `json:"kind"`
	Label string `json:"label,omitempty"`
	Value string `json:"value,omitempty"`
}

// Item is an annotated entity in the source document. It is read-only
// to this system.
type Item struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Page          string       `json:"page"`
	Path          string       `json:"path"`
	ComponentName string       `json:"componentName,omitempty"`
	FrameName     string       `json:"frameName,omitempty"`
	Annotations   []Annotation `json:"annotations"`
	Properties    []Property   `json:"properties,omitempty"`
}

// DisplayName returns the nearest named ancestor used for issue titles:
// component name first, then containing frame, then the item's own name.
func (it Item) DisplayName() string {
	if it.ComponentName != "" {
		return it.ComponentName
	}
	if it.FrameName != "" {
		return it.FrameName
	}
	return it.Name
}

// Source yields annotated items for a collection run. Implementations
// are read-only; walking ScopeDocument may be expensive.
type Source interface {
	Items(ctx context.Context, scope Scope) ([]Item, error)
}

// CategoryResolver is implemented by sources that know the document's
// category definitions and can map a human-given name or ID to one.
type CategoryResolver interface {
	ResolveCategory(nameOrID string) (Category, bool)
}

// ErrNoCurrentPage is returned when a current-page collection is
// requested against a source that has no current page marker.
var ErrNoCurrentPage = fmt.Errorf("source has no current page; rerun with a document-wide scan")
