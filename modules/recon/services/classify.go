package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
)

// Classify decides the difference category for one person given their three
// source views, any of which may be nil. A nil return means the sources are
// consistent and nothing is surfaced.
//
// The ledger is the freshest evidence and wins suggestion precedence over the
// secondary extract, which wins over the system roster. A blank ledger parent
// is never treated as evidence; the suggestion falls back to the next
// non-blank source instead.
func Classify(role staff.Role, name string, system, secondary, ledger *domain.PersonView) *domain.DiffItem {
	if system == nil && secondary == nil && ledger == nil {
		return nil
	}

	if role == staff.RoleDirector {
		return classifyDirector(role, name, system, secondary, ledger)
	}

	sysParent := parentOf(system)
	secParent := parentOf(secondary)
	ledParent := parentOf(ledger)

	switch {
	case system == nil && secondary == nil:
		// Ledger only.
		return newItem(role, name, system, secondary, ledger, domain.DiffNewPerson,
			ledParent,
			fmt.Sprintf("%s appears in the ledger but has no roster record", name))

	case system == nil && ledger == nil:
		return newItem(role, name, system, secondary, ledger, domain.DiffSecondaryOnly,
			secParent,
			fmt.Sprintf("%s appears only in the HR extract and never transacted", name))

	case system == nil:
		// Secondary and ledger, no roster record.
		if secParent != "" && ledParent != "" && !sameParent(secParent, ledParent) {
			return newItem(role, name, system, secondary, ledger, domain.DiffConflict,
				secParent,
				fmt.Sprintf("%s is new but the HR extract reports %q while the ledger reports %q", name, secParent, ledParent))
		}
		return newItem(role, name, system, secondary, ledger, domain.DiffNewPerson,
			coalesce(ledParent, secParent),
			fmt.Sprintf("%s appears in the HR extract and ledger but has no roster record", name))

	case secondary == nil && ledger == nil:
		return newItem(role, name, system, secondary, ledger, domain.DiffInactive,
			sysParent,
			fmt.Sprintf("%s is on the roster but absent from both sources this cycle", name))

	case ledger == nil:
		if sysParent != "" && secParent != "" && !sameParent(sysParent, secParent) {
			return newItem(role, name, system, secondary, ledger, domain.DiffConflict,
				secParent,
				fmt.Sprintf("roster has %s under %q but the HR extract reports %q", name, sysParent, secParent))
		}
		return nil

	case secondary == nil:
		if ledParent == "" {
			return newItem(role, name, system, secondary, ledger, domain.DiffMissingParent,
				sysParent,
				fmt.Sprintf("ledger rows for %s carry no supervisor", name))
		}
		// A blank roster parent still counts as the roster's assertion here;
		// only a blank ledger parent is discounted as evidence.
		if !sameParent(sysParent, ledParent) {
			return newItem(role, name, system, secondary, ledger, domain.DiffConflict,
				ledParent,
				fmt.Sprintf("roster has %s under %q but the ledger reports %q", name, sysParent, ledParent))
		}
		return nil

	default:
		// Present everywhere.
		if ledParent == "" {
			if secParent != "" && sysParent != "" && !sameParent(sysParent, secParent) {
				return newItem(role, name, system, secondary, ledger, domain.DiffConflict,
					secParent,
					fmt.Sprintf("roster has %s under %q but the HR extract reports %q", name, sysParent, secParent))
			}
			return newItem(role, name, system, secondary, ledger, domain.DiffMissingParent,
				coalesce(secParent, sysParent),
				fmt.Sprintf("ledger rows for %s carry no supervisor", name))
		}
		if secParent != "" && !sameParent(secParent, ledParent) {
			return newItem(role, name, system, secondary, ledger, domain.DiffConflict,
				ledParent,
				fmt.Sprintf("HR extract has %s under %q but the ledger reports %q", name, secParent, ledParent))
		}
		if sysParent != "" && !sameParent(sysParent, ledParent) {
			return newItem(role, name, system, secondary, ledger, domain.DiffConflict,
				ledParent,
				fmt.Sprintf("roster has %s under %q but the ledger reports %q", name, sysParent, ledParent))
		}
		return nil
	}
}

// classifyDirector handles the top of the hierarchy. Directors have no
// parent to compare, so only presence matters: never Conflict, never
// MissingParent.
func classifyDirector(role staff.Role, name string, system, secondary, ledger *domain.PersonView) *domain.DiffItem {
	if system == nil {
		return newItem(role, name, system, secondary, ledger, domain.DiffNewPerson, "",
			fmt.Sprintf("director %s has no roster record", name))
	}
	if secondary == nil && ledger == nil {
		return newItem(role, name, system, secondary, ledger, domain.DiffInactive, "",
			fmt.Sprintf("director %s is on the roster but absent from both sources this cycle", name))
	}
	return nil
}

func newItem(role staff.Role, name string, system, secondary, ledger *domain.PersonView, kind domain.DiffKind, suggested, description string) *domain.DiffItem {
	return &domain.DiffItem{
		ID:              uuid.New(),
		Role:            role,
		Name:            name,
		Code:            coalesce(codeOf(ledger), codeOf(secondary), codeOf(system)),
		System:          system,
		Secondary:       secondary,
		Ledger:          ledger,
		Kind:            kind,
		Description:     description,
		SuggestedParent: suggested,
	}
}

func parentOf(v *domain.PersonView) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(v.ParentName)
}

func codeOf(v *domain.PersonView) string {
	if v == nil {
		return ""
	}
	return v.Code
}

func sameParent(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
