package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
	rosterservices "github.com/fieldops/salesrecon/modules/roster/services"
	"github.com/fieldops/salesrecon/pkg/eventbus"
)

// nowMonth is swapped in tests.
var nowMonth = func() int { return int(time.Now().Month()) }

// Applier writes operator-confirmed resolutions back into the roster. Items
// are applied one by one; a failure on one item never rolls back the others,
// and re-running reconciliation is the retry path.
type Applier struct {
	store     *rosterservices.RosterStore
	publisher eventbus.EventBus
	log       *logrus.Logger
}

func NewApplier(store *rosterservices.RosterStore, publisher eventbus.EventBus, log *logrus.Logger) *Applier {
	return &Applier{store: store, publisher: publisher, log: log}
}

// Apply processes the confirmed batch and returns how many items produced a
// roster mutation. The returned error reports persistence failure for the
// batch; in-memory mutations already applied are kept.
func (a *Applier) Apply(ctx context.Context, items []*domain.DiffItem) (int, error) {
	changed := 0
	for _, item := range items {
		if !actionable(item) {
			continue
		}
		if a.applyItem(ctx, item) {
			changed++
		}
	}
	return changed, a.store.Flush()
}

func actionable(item *domain.DiffItem) bool {
	switch item.Action {
	case domain.ActionAccept:
		return true
	case domain.ActionModify:
		return item.ConfirmedParent != ""
	}
	return false
}

func (a *Applier) applyItem(ctx context.Context, item *domain.DiffItem) bool {
	parent := coalesce(item.ConfirmedParent, item.SuggestedParent)

	month := nowMonth()
	if item.Ledger != nil {
		if first := item.Ledger.FirstMonth(); first > 0 {
			month = first
		}
	}

	tx := &staff.Transaction{}

	if !a.store.HasAny(item.Name, item.Role) {
		created := &staff.Record{
			Name:           item.Name,
			Code:           item.Code,
			Role:           item.Role,
			ParentName:     parent,
			Status:         staff.StatusActive,
			EffectiveMonth: month,
		}
		tx.Append(created)
		if err := a.store.Commit(ctx, tx); err != nil {
			a.log.WithError(err).WithField("name", item.Name).Warn("recon: skipping unappliable item")
			return false
		}
		if a.publisher != nil {
			a.publisher.Publish(&staff.CreatedEvent{Record: created})
		}
		return true
	}

	current := a.store.LookupEffective(item.Name, item.Role, month)
	if current == nil {
		return false
	}
	if strings.TrimSpace(parent) == "" {
		// No confirmed destination; at most a blank code gets filled in.
		return a.store.Backfill(item.Name, item.Role, month, "", item.Code)
	}
	if sameParent(current.ParentName, parent) {
		// Already where the operator wants them.
		return a.store.Backfill(item.Name, item.Role, month, "", item.Code)
	}
	if strings.TrimSpace(current.ParentName) == "" {
		// A blank assignment is a gap, not a transfer source. Filling the
		// field is the one in-place mutation the roster allows.
		return a.store.Backfill(item.Name, item.Role, month, parent, item.Code)
	}

	// Preserve history: close out the old assignment and open the new one at
	// the same month instead of overwriting.
	closed := &staff.Record{
		Name:           current.Name,
		Code:           current.Code,
		Role:           current.Role,
		ParentName:     current.ParentName,
		Status:         staff.StatusTransferred,
		EffectiveMonth: month,
	}
	opened := &staff.Record{
		Name:           current.Name,
		Code:           coalesce(item.Code, current.Code),
		Role:           current.Role,
		ParentName:     parent,
		Status:         staff.StatusActive,
		EffectiveMonth: month,
	}
	tx.Append(closed, opened)
	if err := a.store.Commit(ctx, tx); err != nil {
		a.log.WithError(err).WithField("name", item.Name).Warn("recon: skipping unappliable item")
		return false
	}
	if a.publisher != nil {
		a.publisher.Publish(&staff.TransferredEvent{Old: closed, New: opened})
	}
	return true
}
