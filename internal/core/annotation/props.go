package annotation

import "fmt"

// formatFunc renders one property for an issue body. The bool reports
// whether the property produced a value at all.
type formatFunc func(Property) (string, bool)

// formatters maps property kinds to their renderers. Kinds not present
// here fall through to formatGeneric; properties neither can resolve
// are omitted from the body rather than treated as errors.
var formatters = map[string]formatFunc{
	"spacing":   formatSpacing,
	"alignment": formatAlignment,
	"font":      formatFont,
}

// FormatProperty renders a property as a "Label: value" line for the
// issue body. ok is false when the property has nothing to show.
func FormatProperty(p Property) (string, bool) {
	if f, found := formatters[p.Kind]; found {
		return f(p)
	}
	return formatGeneric(p)
}

func formatSpacing(p Property) (string, bool) {
	if p.Value == "" {
		return "", false
	}
	return fmt.Sprintf("Spacing: %spx", p.Value), true
}

func formatAlignment(p Property) (string, bool) {
	if p.Value == "" {
		return "", false
	}
	return "Alignment: " + p.Value, true
}

func formatFont(p Property) (string, bool) {
	if p.Value == "" {
		return "", false
	}
	label := p.Label
	if label == "" {
		label = "Font"
	}
	return label + ": " + p.Value, true
}

func formatGeneric(p Property) (string, bool) {
	if p.Label == "" || p.Value == "" {
		return "", false
	}
	return p.Label + ": " + p.Value, true
}
