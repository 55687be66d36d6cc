package properties

import (
	"fmt"
	"strconv"
	"strings"
)

// MetadataKind tags how a metadata value is typed and rendered
type MetadataKind string

const (
	KindCurrency   MetadataKind = "currency"
	KindPercentage MetadataKind = "percentage"
	KindText       MetadataKind = "text"
)

// Metadata is one listing metadata value. The kind is resolved once when the
// raw scraped value is ingested and stored alongside the value; render code
// switches on Kind and never re-parses.
type Metadata struct {
	Kind   MetadataKind `json:"kind"`
	Number float64      `json:"number,omitempty"`
	Text   string       `json:"text,omitempty"`
}

// ResolveMetadata classifies a raw scraped value into a typed metadata entry.
// Strings like "$1,234" become currency, "5.2%" becomes percentage (stored as
// a fraction), JSON numbers become currency, everything else stays text.
func ResolveMetadata(raw interface{}) Metadata {
	switch v := raw.(type) {
	case float64:
		return Metadata{Kind: KindCurrency, Number: v}
	case int:
		return Metadata{Kind: KindCurrency, Number: float64(v)}
	case string:
		return resolveString(v)
	default:
		return Metadata{Kind: KindText, Text: fmt.Sprintf("%v", raw)}
	}
}

func resolveString(s string) Metadata {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "$") {
		if n, err := parseNumber(strings.TrimPrefix(trimmed, "$")); err == nil {
			return Metadata{Kind: KindCurrency, Number: n}
		}
	}

	if strings.HasSuffix(trimmed, "%") {
		if n, err := parseNumber(strings.TrimSuffix(trimmed, "%")); err == nil {
			return Metadata{Kind: KindPercentage, Number: n / 100}
		}
	}

	if n, err := parseNumber(trimmed); err == nil {
		return Metadata{Kind: KindCurrency, Number: n}
	}

	return Metadata{Kind: KindText, Text: trimmed}
}

func parseNumber(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(cleaned, 64)
}

// ResolveMetadataMap resolves a raw scraped JSON object into typed metadata
func ResolveMetadataMap(raw map[string]interface{}) map[string]Metadata {
	out := make(map[string]Metadata, len(raw))
	for key, value := range raw {
		out[key] = ResolveMetadata(value)
	}
	return out
}
