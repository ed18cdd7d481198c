package services

import (
	"strings"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
)

// coalesce returns the first non-blank value. All first-non-empty-wins merge
// decisions in the extractors go through here so the three sources cannot
// drift apart in behavior.
func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ExtractSystem folds the roster into one view per person. The parent is
// taken from the record effective at the latest month the roster mentions for
// that person, falling back to the year default.
func ExtractSystem(records []*staff.Record) map[domain.ViewKey]*domain.PersonView {
	byKey := make(map[staff.Key][]*staff.Record)
	for _, r := range records {
		byKey[r.Key()] = append(byKey[r.Key()], r)
	}

	views := make(map[domain.ViewKey]*domain.PersonView, len(byKey))
	for key, recs := range byKey {
		view := domain.NewPersonView(key.Role, key.Name)

		latestMonth := staff.YearDefaultMonth
		for _, r := range recs {
			if r.EffectiveMonth > latestMonth {
				latestMonth = r.EffectiveMonth
			}
			view.ObserveMonth(r.EffectiveMonth)
		}

		effective := effectiveOf(recs, latestMonth)
		if effective != nil {
			view.ParentName = effective.ParentName
			view.Code = effective.Code
			view.Status = effective.Status
		} else {
			// No active record; surface the latest one so the person still
			// appears in the system view with their terminal status.
			last := recs[0]
			for _, r := range recs {
				if r.Revision > last.Revision {
					last = r
				}
			}
			view.ParentName = last.ParentName
			view.Code = last.Code
			view.Status = last.Status
		}

		views[view.Key()] = view
	}
	return views
}

// effectiveOf mirrors the store's lookup rule on a pre-filtered record list.
func effectiveOf(recs []*staff.Record, asOfMonth int) *staff.Record {
	var best *staff.Record
	for _, r := range recs {
		if r.Status != staff.StatusActive {
			continue
		}
		if r.EffectiveMonth != staff.YearDefaultMonth && r.EffectiveMonth > asOfMonth {
			continue
		}
		if best == nil ||
			r.EffectiveMonth > best.EffectiveMonth ||
			(r.EffectiveMonth == best.EffectiveMonth && r.Revision > best.Revision) {
			best = r
		}
	}
	return best
}

// ExtractSecondary builds views from the HR/network export. Every row
// contributes the three hierarchy edges encoded by its name columns; the
// first occurrence of a person wins, later rows never overwrite a parent or
// code once set.
func ExtractSecondary(rows []domain.SecondaryRow) map[domain.ViewKey]*domain.PersonView {
	views := make(map[domain.ViewKey]*domain.PersonView)

	upsert := func(role staff.Role, name, parent, code string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := domain.ViewKey{Role: role, Name: name}
		view, ok := views[key]
		if !ok {
			view = domain.NewPersonView(role, name)
			views[key] = view
		}
		view.ParentName = coalesce(view.ParentName, parent)
		view.Code = coalesce(view.Code, code)
	}

	for _, row := range rows {
		upsert(staff.RoleCustomerManager, row.CustomerManager, row.DeptManager, row.EmployeeCode)
		upsert(staff.RoleDeptManager, row.DeptManager, row.Director, "")
		upsert(staff.RoleDirector, row.Director, "", "")
	}
	return views
}

// ExtractLedger builds views from the transaction rows. Rows without a
// parseable date carry month 0 and are skipped entirely, including for
// aggregation: a hierarchy snapshot must be temporally precise.
func ExtractLedger(rows []*domain.LedgerRow) map[domain.ViewKey]*domain.PersonView {
	views := make(map[domain.ViewKey]*domain.PersonView)

	merge := func(role staff.Role, name, parent, code string, row *domain.LedgerRow) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := domain.ViewKey{Role: role, Name: name}
		view, ok := views[key]
		if !ok {
			view = domain.NewPersonView(role, name)
			views[key] = view
		}
		view.ParentName = coalesce(view.ParentName, parent)
		view.Code = coalesce(view.Code, code)
		view.PolicyCount++
		view.TotalAmount = view.TotalAmount.Add(row.Amount)
		view.ObserveMonth(row.Month)
	}

	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		merge(staff.RoleCustomerManager, row.CustomerManager, row.DeptManager, row.CustomerCode, row)
		merge(staff.RoleDeptManager, row.DeptManager, row.Director, "", row)
		merge(staff.RoleDirector, row.Director, "", "", row)
	}
	return views
}
