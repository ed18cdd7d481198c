package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
	rosterservices "github.com/fieldops/salesrecon/modules/roster/services"
	"github.com/fieldops/salesrecon/pkg/eventbus"
	"github.com/fieldops/salesrecon/pkg/metrics"
)

// ReconService is the reconciliation facade: one instance per process,
// operating on the shared roster store. Each call works over one in-memory
// snapshot and one parsed ledger, synchronously.
type ReconService struct {
	store   *rosterservices.RosterStore
	applier *Applier
	scanner *LedgerScanner
	log     *logrus.Logger
}

func NewReconService(store *rosterservices.RosterStore, publisher eventbus.EventBus, log *logrus.Logger) *ReconService {
	return &ReconService{
		store:   store,
		applier: NewApplier(store, publisher, log),
		scanner: NewLedgerScanner(store, publisher, log),
		log:     log,
	}
}

func (s *ReconService) Store() *rosterservices.RosterStore {
	return s.store
}

// ExtractDiff runs the three extractors and classifies every person observed
// by at least one source. Items come back ordered by role then name so runs
// over the same inputs produce identical reports.
func (s *ReconService) ExtractDiff(
	systemRoster []*staff.Record,
	secondaryRows []domain.SecondaryRow,
	ledgerRows []*domain.LedgerRow,
) *domain.DiffResult {
	metrics.ReconRuns.Inc()

	system := ExtractSystem(systemRoster)
	secondary := ExtractSecondary(secondaryRows)
	ledger := ExtractLedger(ledgerRows)

	keys := make(map[domain.ViewKey]struct{})
	for k := range system {
		keys[k] = struct{}{}
	}
	for k := range secondary {
		keys[k] = struct{}{}
	}
	for k := range ledger {
		keys[k] = struct{}{}
	}

	result := &domain.DiffResult{CountsByKind: make(map[domain.DiffKind]int)}
	for key := range keys {
		item := Classify(key.Role, key.Name, system[key], secondary[key], ledger[key])
		if item == nil {
			continue
		}
		result.Items = append(result.Items, item)
		result.CountsByKind[item.Kind]++
		metrics.DiffItems.WithLabelValues(string(item.Kind)).Inc()
	}
	result.TotalItems = len(result.Items)

	sort.Slice(result.Items, func(i, j int) bool {
		if result.Items[i].Role != result.Items[j].Role {
			return result.Items[i].Role < result.Items[j].Role
		}
		return result.Items[i].Name < result.Items[j].Name
	})

	s.log.WithFields(logrus.Fields{
		"people": len(keys),
		"items":  result.TotalItems,
	}).Info("recon: diff extraction complete")
	return result
}

// ApplyResolutions writes the operator-confirmed batch into the roster and
// returns how many items changed it.
func (s *ReconService) ApplyResolutions(ctx context.Context, items []*domain.DiffItem) (int, error) {
	changed, err := s.applier.Apply(ctx, items)
	metrics.AppliedResolutions.Add(float64(changed))
	return changed, err
}

// ScanAndFillLedger detects organic hierarchy changes from the ledger, then
// repairs blank attribution on its rows in place. asOfMonth is the reporting
// month, used as the effective-lookup month for rows without a usable date.
func (s *ReconService) ScanAndFillLedger(
	ctx context.Context,
	ledgerRows []*domain.LedgerRow,
	codes CodeTable,
	asOfMonth int,
) (domain.ScanStats, error) {
	stats, err := s.scanner.Scan(ctx, ledgerRows)
	if err != nil {
		return stats, err
	}
	s.scanner.Fill(ledgerRows, codes, asOfMonth)

	metrics.ScanRecords.WithLabelValues("added").Add(float64(stats.Added))
	metrics.ScanRecords.WithLabelValues("transferred").Add(float64(stats.Transferred))
	metrics.ScanRecords.WithLabelValues("unchanged").Add(float64(stats.Unchanged))

	s.log.WithFields(logrus.Fields{
		"added":       stats.Added,
		"transferred": stats.Transferred,
		"unchanged":   stats.Unchanged,
	}).Info("recon: ledger scan complete")
	return stats, nil
}

// CheckIntegrity reports rows still missing attribution after a fill pass.
func (s *ReconService) CheckIntegrity(ledgerRows []*domain.LedgerRow) domain.IntegrityAlert {
	return CheckIntegrity(ledgerRows)
}
