package services

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
	rosterservices "github.com/fieldops/salesrecon/modules/roster/services"
	"github.com/fieldops/salesrecon/pkg/eventbus"
)

// ManagerMapping is the secondary extract's answer for one outlet code.
type ManagerMapping struct {
	DeptManager string
	Director    string
}

// CodeTable maps outlet/network codes to managers, the last-resort fill
// lookup.
type CodeTable map[string]ManagerMapping

// BuildCodeTable folds secondary rows into a code table. First occurrence of
// a code wins.
func BuildCodeTable(rows []domain.SecondaryRow) CodeTable {
	table := make(CodeTable)
	for _, row := range rows {
		code := strings.TrimSpace(row.OutletCode)
		if code == "" {
			continue
		}
		if existing, ok := table[code]; ok {
			// Only fill gaps left by earlier rows.
			existing.DeptManager = coalesce(existing.DeptManager, row.DeptManager)
			existing.Director = coalesce(existing.Director, row.Director)
			table[code] = existing
			continue
		}
		table[code] = ManagerMapping{DeptManager: row.DeptManager, Director: row.Director}
	}
	return table
}

// LedgerScanner detects organic hierarchy changes directly from the ledger
// and repairs missing attribution on its rows. Both passes are safe to run
// repeatedly.
type LedgerScanner struct {
	store     *rosterservices.RosterStore
	publisher eventbus.EventBus
	log       *logrus.Logger
}

func NewLedgerScanner(store *rosterservices.RosterStore, publisher eventbus.EventBus, log *logrus.Logger) *LedgerScanner {
	return &LedgerScanner{store: store, publisher: publisher, log: log}
}

type scanEvidence struct {
	role   staff.Role
	name   string
	parent string
	month  int
}

type scanMonthKey struct {
	key   staff.Key
	month int
}

// Scan walks ledger rows in ascending month order and synthesizes roster
// records for changes the ledger itself proves: new people get an Active
// record at their first-seen month, and people whose parent in a given month
// contradicts the assignment in force for that month get a Transferred/Active
// pair there. Every (person, month) pair is examined once, so a transfer that
// only shows up in later months is still caught even when earlier months
// agree with the roster. A record already sitting at that exact month means a
// previous scan handled it, so the pass is idempotent.
func (s *LedgerScanner) Scan(ctx context.Context, rows []*domain.LedgerRow) (domain.ScanStats, error) {
	var stats domain.ScanStats

	ordered := make([]*domain.LedgerRow, 0, len(rows))
	for _, row := range rows {
		if row.Month >= 1 && row.Month <= 12 {
			ordered = append(ordered, row)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Month < ordered[j].Month })

	seen := make(map[scanMonthKey]bool)
	// overlay carries the records this pass has synthesized but not yet
	// committed, so later months compare against the assignment the pass
	// itself introduced instead of the stale store.
	overlay := make(map[staff.Key]*staff.Record)
	tx := &staff.Transaction{}
	var created []*staff.Record
	var transfers [][2]*staff.Record

	process := func(ev scanEvidence) {
		name := strings.TrimSpace(ev.name)
		if name == "" {
			return
		}
		key := staff.Key{Role: ev.role, Name: name}
		if seen[scanMonthKey{key: key, month: ev.month}] {
			return
		}
		seen[scanMonthKey{key: key, month: ev.month}] = true

		current := overlay[key]
		if current == nil && !s.store.HasAny(name, ev.role) {
			rec := &staff.Record{
				Name:           name,
				Role:           ev.role,
				ParentName:     strings.TrimSpace(ev.parent),
				Status:         staff.StatusActive,
				EffectiveMonth: ev.month,
			}
			tx.Append(rec)
			overlay[key] = rec
			created = append(created, rec)
			stats.Added++
			return
		}

		parent := strings.TrimSpace(ev.parent)
		if parent == "" {
			// Blank is never evidence of a change.
			stats.Unchanged++
			return
		}

		if current == nil {
			current = s.store.LookupEffective(name, ev.role, ev.month)
		}
		if current == nil || sameParent(current.ParentName, parent) {
			stats.Unchanged++
			return
		}

		if strings.TrimSpace(current.ParentName) == "" {
			// A blank assignment is a gap, not a transfer source: fill it
			// rather than fabricate a transfer out of nobody.
			if current == overlay[key] {
				current.ParentName = parent
			} else {
				s.store.Backfill(name, ev.role, ev.month, parent, "")
			}
			stats.Unchanged++
			return
		}

		if s.store.HasRecordAt(name, ev.role, ev.month) {
			// A previous scan or a confirmed resolution already wrote this
			// month.
			stats.Unchanged++
			return
		}

		closed := &staff.Record{
			Name:           name,
			Code:           current.Code,
			Role:           ev.role,
			ParentName:     current.ParentName,
			Status:         staff.StatusTransferred,
			EffectiveMonth: ev.month,
		}
		opened := &staff.Record{
			Name:           name,
			Code:           current.Code,
			Role:           ev.role,
			ParentName:     parent,
			Status:         staff.StatusActive,
			EffectiveMonth: ev.month,
		}
		tx.Append(closed, opened)
		overlay[key] = opened
		transfers = append(transfers, [2]*staff.Record{closed, opened})
		stats.Transferred++
	}

	for _, row := range ordered {
		process(scanEvidence{role: staff.RoleCustomerManager, name: row.CustomerManager, parent: row.DeptManager, month: row.Month})
		process(scanEvidence{role: staff.RoleDeptManager, name: row.DeptManager, parent: row.Director, month: row.Month})
		process(scanEvidence{role: staff.RoleDirector, name: row.Director, parent: "", month: row.Month})
	}

	if err := s.store.Commit(ctx, tx); err != nil {
		return stats, err
	}
	if s.publisher != nil {
		for _, rec := range created {
			s.publisher.Publish(&staff.CreatedEvent{Record: rec})
		}
		for _, pair := range transfers {
			s.publisher.Publish(&staff.TransferredEvent{Old: pair[0], New: pair[1]})
		}
	}
	return stats, nil
}

// Fill repairs blank attribution fields in place. For each missing name it
// tries, in order: the roster record effective at the row's month (asOfMonth
// standing in for rows without a usable date), the most-recently-known roster
// mapping regardless of month, and the secondary extract's outlet-code table.
// Already-filled fields are left alone, so the pass can run every report
// cycle.
func (s *LedgerScanner) Fill(rows []*domain.LedgerRow, codes CodeTable, asOfMonth int) {
	var byEffective, byLatest, byCode int

	for _, row := range rows {
		month := row.Month
		if month < 1 || month > 12 {
			month = asOfMonth
		}
		if strings.TrimSpace(row.DeptManager) == "" {
			row.DeptManager, _ = s.resolveParent(row.CustomerManager, staff.RoleCustomerManager, month, codes, row.OutletCode, func(m ManagerMapping) string { return m.DeptManager }, &byEffective, &byLatest, &byCode)
		}
		if strings.TrimSpace(row.Director) == "" {
			row.Director, _ = s.resolveParent(row.DeptManager, staff.RoleDeptManager, month, codes, row.OutletCode, func(m ManagerMapping) string { return m.Director }, &byEffective, &byLatest, &byCode)
		}
	}

	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"by_effective": byEffective,
			"by_latest":    byLatest,
			"by_code":      byCode,
		}).Info("recon: ledger attribution fill complete")
	}
}

func (s *LedgerScanner) resolveParent(
	childName string,
	childRole staff.Role,
	month int,
	codes CodeTable,
	outletCode string,
	pick func(ManagerMapping) string,
	byEffective, byLatest, byCode *int,
) (string, bool) {
	childName = strings.TrimSpace(childName)

	if childName != "" && month >= 1 && month <= 12 {
		if rec := s.store.LookupEffective(childName, childRole, month); rec != nil && rec.ParentName != "" {
			*byEffective++
			return rec.ParentName, true
		}
	}
	if childName != "" {
		if rec := s.store.LookupLatest(childName, childRole); rec != nil && rec.ParentName != "" {
			*byLatest++
			return rec.ParentName, true
		}
	}
	if code := strings.TrimSpace(outletCode); code != "" {
		if mapping, ok := codes[code]; ok {
			if parent := strings.TrimSpace(pick(mapping)); parent != "" {
				*byCode++
				return parent, true
			}
		}
	}
	return "", false
}

// CheckIntegrity counts rows still missing attribution after fill, grouped
// by the customer manager they belong to.
func CheckIntegrity(rows []*domain.LedgerRow) domain.IntegrityAlert {
	alert := domain.IntegrityAlert{TotalRows: len(rows)}
	gaps := make(map[string]int)

	for _, row := range rows {
		missing := false
		if strings.TrimSpace(row.DeptManager) == "" {
			alert.MissingDeptManager++
			missing = true
		}
		if strings.TrimSpace(row.Director) == "" {
			alert.MissingDirector++
			missing = true
		}
		if missing {
			name := strings.TrimSpace(row.CustomerManager)
			if name == "" {
				name = "(unattributed)"
			}
			gaps[name]++
		}
	}

	for name, count := range gaps {
		alert.ByPerson = append(alert.ByPerson, domain.PersonGap{Name: name, Rows: count})
	}
	sort.Slice(alert.ByPerson, func(i, j int) bool {
		if alert.ByPerson[i].Rows != alert.ByPerson[j].Rows {
			return alert.ByPerson[i].Rows > alert.ByPerson[j].Rows
		}
		return alert.ByPerson[i].Name < alert.ByPerson[j].Name
	})
	return alert
}
