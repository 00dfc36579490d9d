package services

import (
	"strconv"
	"strings"

	"invoice-extraction-platform/models"
)

// ParsePrice coerces an extracted price string to a float. Invoices use
// "." as the thousands separator and "," as the decimal separator
// ("1.234,56" -> 1234.56). Any failure yields nil, never zero, so
// downstream reporting can tell "zero" from "unparseable".
func ParsePrice(s string) *float64 {
	if s == "" {
		return nil
	}

	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseQuantity coerces an extracted quantity string to an integer.
// Failure yields nil, not zero.
func ParseQuantity(s string) *int {
	if s == "" {
		return nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

// MatchCanonical tests whether any canonical name is contained in the
// extracted name, case-insensitively. Extracted names carry OCR noise
// and trailing annotations, so the canonical name is expected to be a
// strict substring. First match in list order wins; list order is the
// priority.
func MatchCanonical(name string, canonical []string) (string, bool) {
	lower := strings.ToLower(name)
	for _, standard := range canonical {
		if strings.Contains(lower, strings.ToLower(standard)) {
			return standard, true
		}
	}
	return name, false
}

// NormalizeCoverings filters coverings to those matching a canonical
// covering name and rewrites their names to the canonical form.
func NormalizeCoverings(coverings []models.Covering, canonical []string) []models.Covering {
	var normalized []models.Covering
	for _, covering := range coverings {
		if covering.Name == "" {
			continue
		}
		name, ok := MatchCanonical(covering.Name, canonical)
		if !ok {
			continue
		}
		covering.Name = name
		normalized = append(normalized, covering)
	}
	return normalized
}
