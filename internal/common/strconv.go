package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseBool accepts the usual spellings of true/false found in query strings.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y", "sim":
		return true, nil
	case "false", "0", "no", "n", "nao", "não":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", value)
	}
}

// ParseDecimal parses a decimal written with either "." or "," as the
// fractional separator ("12.5", "12,5"). Thousands separators are not accepted.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("empty decimal")
	}
	if !strings.Contains(value, ".") {
		value = strings.Replace(value, ",", ".", 1)
	}
	return decimal.NewFromString(value)
}
