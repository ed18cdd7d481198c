// Package sheets decodes uploaded xlsx extracts into the typed rows the
// reconciliation core consumes. Header rows are auto-detected; the core never
// sees raw header text.
package sheets

import (
	"io"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/fieldops/salesrecon/modules/recon/domain"
)

var ErrNoHeader = gerrors.New("no recognizable header row found")

// headerAliases maps the header texts seen in the wild onto canonical field
// names.
var headerAliases = map[string]string{
	"policy no":          "policy_no",
	"policy number":      "policy_no",
	"policy":             "policy_no",
	"date":               "date",
	"issue date":         "date",
	"transaction date":   "date",
	"customer manager":   "customer_manager",
	"account manager":    "customer_manager",
	"dept manager":       "dept_manager",
	"department manager": "dept_manager",
	"manager":            "dept_manager",
	"director":           "director",
	"employee code":      "employee_code",
	"staff code":         "employee_code",
	"customer code":      "customer_code",
	"outlet code":        "outlet_code",
	"network code":       "outlet_code",
	"outlet":             "outlet_code",
	"amount":             "amount",
	"premium":            "amount",
	"total amount":       "amount",
}

// headerScanDepth bounds how far down we look for the header row.
const headerScanDepth = 10

type columnMap map[string]int

func (c columnMap) get(row []string, field string) string {
	idx, ok := c[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// detectHeader scans the leading rows for the one that mentions at least two
// known columns and returns its index plus the field->column mapping.
func detectHeader(rows [][]string) (int, columnMap, error) {
	for i, row := range rows {
		if i >= headerScanDepth {
			break
		}
		mapping := make(columnMap)
		for col, cell := range row {
			key := strings.ToLower(strings.TrimSpace(cell))
			if field, ok := headerAliases[key]; ok {
				if _, exists := mapping[field]; !exists {
					mapping[field] = col
				}
			}
		}
		if len(mapping) >= 2 {
			return i, mapping, nil
		}
	}
	return 0, nil, ErrNoHeader
}

func readFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, gerrors.New("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

// ReadLedger decodes a ledger workbook. Rows with an unparseable date come
// back with Month 0 so the core can skip their hierarchy contribution while
// the integrity check still sees them.
func ReadLedger(r io.Reader) ([]*domain.LedgerRow, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}
	headerIdx, cols, err := detectHeader(rows)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.LedgerRow, 0, len(rows)-headerIdx-1)
	for _, raw := range rows[headerIdx+1:] {
		if blankRow(raw) {
			continue
		}
		row := &domain.LedgerRow{
			PolicyNo:        cols.get(raw, "policy_no"),
			CustomerManager: cols.get(raw, "customer_manager"),
			DeptManager:     cols.get(raw, "dept_manager"),
			Director:        cols.get(raw, "director"),
			CustomerCode:    cols.get(raw, "customer_code"),
			OutletCode:      cols.get(raw, "outlet_code"),
			Amount:          ParseAmount(cols.get(raw, "amount")),
		}
		if date, ok := ParseDate(cols.get(raw, "date")); ok {
			row.Date = date
			row.Month = int(date.Month())
		}
		out = append(out, row)
	}
	return out, nil
}

// ReadSecondary decodes an HR/network export workbook.
func ReadSecondary(r io.Reader) ([]domain.SecondaryRow, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}
	headerIdx, cols, err := detectHeader(rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SecondaryRow, 0, len(rows)-headerIdx-1)
	for _, raw := range rows[headerIdx+1:] {
		if blankRow(raw) {
			continue
		}
		out = append(out, domain.SecondaryRow{
			CustomerManager: cols.get(raw, "customer_manager"),
			DeptManager:     cols.get(raw, "dept_manager"),
			Director:        cols.get(raw, "director"),
			EmployeeCode:    cols.get(raw, "employee_code"),
			OutletCode:      cols.get(raw, "outlet_code"),
		})
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
