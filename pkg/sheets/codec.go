package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"01-02-06",
	"1/2/06",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// excelEpoch is day zero of the 1900 date system used by xlsx serials.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate coerces a cell value into a date. Accepts the common textual
// layouts plus raw Excel serial numbers. The second return is false when the
// value is blank or unusable; callers skip such rows rather than erroring.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 59 && serial < 80000 {
		days := int(serial)
		return excelEpoch.AddDate(0, 0, days), true
	}

	return time.Time{}, false
}

// ParseAmount coerces a cell value into a decimal amount. Blank or
// malformed values decay to zero; a bad amount never invalidates the row's
// hierarchy evidence.
func ParseAmount(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, ",", "")
	value = strings.TrimPrefix(value, "$")
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
