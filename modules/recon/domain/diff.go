package domain

import (
	"github.com/google/uuid"

	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
)

type DiffKind string

const (
	// DiffConflict marks parents that disagree across sources.
	DiffConflict DiffKind = "conflict"
	// DiffMissingParent marks a person whose freshest evidence carries no
	// parent at all.
	DiffMissingParent DiffKind = "missing_parent"
	// DiffNewPerson marks someone absent from the system roster but observed
	// elsewhere.
	DiffNewPerson DiffKind = "new_person"
	// DiffInactive marks someone on the roster who no longer appears in
	// either external source this cycle.
	DiffInactive DiffKind = "inactive"
	// DiffSecondaryOnly marks someone seen only in the HR extract, never
	// transacting.
	DiffSecondaryOnly DiffKind = "secondary_only"
)

type ResolutionAction string

const (
	ActionAccept ResolutionAction = "accept"
	ActionReject ResolutionAction = "reject"
	ActionModify ResolutionAction = "modify"
)

// DiffItem is one row of the reconciliation report surfaced for a human
// decision. Items live for one reconciliation run only.
type DiffItem struct {
	ID   uuid.UUID  `json:"id"`
	Role staff.Role `json:"role"`
	Name string     `json:"name"`
	Code string     `json:"code"`

	System    *PersonView `json:"system,omitempty"`
	Secondary *PersonView `json:"secondary,omitempty"`
	Ledger    *PersonView `json:"ledger,omitempty"`

	Kind        DiffKind `json:"kind"`
	Description string   `json:"description"`

	SuggestedParent string `json:"suggested_parent"`

	// ConfirmedParent and Action are filled by the operator before the item
	// is handed to the applier.
	ConfirmedParent string           `json:"confirmed_parent"`
	Action          ResolutionAction `json:"action"`
}

type DiffResult struct {
	TotalItems   int              `json:"total_items"`
	CountsByKind map[DiffKind]int `json:"counts_by_kind"`
	Items        []*DiffItem      `json:"items"`
}
