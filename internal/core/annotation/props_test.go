package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatProperty(t *testing.T) {
	tests := []struct {
		name string
		prop Property
		want string
		ok   bool
	}{
		{"spacing", Property{Kind: "spacing", Value: "8"}, "Spacing: 8px", true},
		{"spacing empty", Property{Kind: "spacing"}, "", false},
		{"alignment", Property{Kind: "alignment", Value: "center"}, "Alignment: center", true},
		{"font with label", Property{Kind: "font", Label: "Heading font", Value: "Inter 600"}, "Heading font: Inter 600", true},
		{"font default label", Property{Kind: "font", Value: "Inter"}, "Font: Inter", true},
		{"generic", Property{Kind: "corner-radius", Label: "Corner radius", Value: "4"}, "Corner radius: 4", true},
		{"unrecognized without label", Property{Kind: "mystery", Value: "4"}, "", false},
		{"unrecognized without value", Property{Kind: "mystery", Label: "Mystery"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatProperty(tt.prop)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
