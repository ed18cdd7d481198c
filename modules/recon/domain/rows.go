package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is one decoded sales transaction. The hierarchy is redundantly
// encoded on every row and may be blank, stale or contradictory; the
// reconciliation core treats each row as evidence, never as truth.
//
// Attribution fields are mutated in place by the auto-filler, so ledger rows
// travel as pointers.
type LedgerRow struct {
	PolicyNo string
	Date     time.Time
	// Month is derived from Date at decode time; 0 means the date was absent
	// or unparseable and the row contributes nothing to extraction.
	Month int

	CustomerManager string
	DeptManager     string
	Director        string

	CustomerCode string
	OutletCode   string

	Amount decimal.Decimal
}

// SecondaryRow is one staff assignment from the HR/network export, carrying
// the same three name columns plus employee and outlet codes.
type SecondaryRow struct {
	CustomerManager string
	DeptManager     string
	Director        string

	EmployeeCode string
	OutletCode   string
}

// ScanStats summarizes one scan-and-fill pass over the ledger.
type ScanStats struct {
	Added       int `json:"added"`
	Transferred int `json:"transferred"`
	Unchanged   int `json:"unchanged"`
}

// PersonGap counts ledger rows that still lack attribution for one customer
// manager after the fill pass.
type PersonGap struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// IntegrityAlert reports rows still missing manager or director names after
// filling, for the downstream integrity collaborator to surface.
type IntegrityAlert struct {
	TotalRows          int         `json:"total_rows"`
	MissingDeptManager int         `json:"missing_dept_manager"`
	MissingDirector    int         `json:"missing_director"`
	ByPerson           []PersonGap `json:"by_person"`
}
