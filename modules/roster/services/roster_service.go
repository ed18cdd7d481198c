package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
	"github.com/fieldops/salesrecon/pkg/eventbus"
)

// RosterStore holds the in-memory roster snapshot for the process. Writes are
// visible to subsequent reads immediately; durability is asynchronous and
// callers that need an acknowledgment call Flush.
//
// Operators do not upload concurrently in practice, so there is no ordering
// guarantee between racing mutations beyond map integrity (last persisted
// snapshot wins).
type RosterStore struct {
	mu           sync.Mutex
	records      []*staff.Record
	nextRevision int64

	repo      staff.Repository
	publisher eventbus.EventBus
	log       *logrus.Logger

	persistCtx context.Context
	persistWG  sync.WaitGroup
	persistMu  sync.Mutex
	persistErr error
}

func NewRosterStore(repo staff.Repository, publisher eventbus.EventBus, log *logrus.Logger) *RosterStore {
	return &RosterStore{
		repo:       repo,
		publisher:  publisher,
		log:        log,
		persistCtx: context.Background(),
	}
}

// SetPersistContext sets the context used for asynchronous saves, typically
// carrying the database pool. Request contexts are unsuitable because they
// are cancelled before a fire-and-forget save completes.
func (s *RosterStore) SetPersistContext(ctx context.Context) {
	s.persistCtx = ctx
}

// Load replaces the in-memory snapshot with the persisted roster.
func (s *RosterStore) Load(ctx context.Context) error {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.nextRevision = 1
	for _, r := range records {
		if r.Revision >= s.nextRevision {
			s.nextRevision = r.Revision + 1
		}
	}
	return nil
}

// SetRecords seeds the snapshot directly, bypassing persistence. Used by the
// batch CLI and by tests.
func (s *RosterStore) SetRecords(records []*staff.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.nextRevision = 1
	for _, r := range records {
		if r.Revision >= s.nextRevision {
			s.nextRevision = r.Revision + 1
		}
	}
}

// Records returns a copy of the current snapshot.
func (s *RosterStore) Records() []*staff.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*staff.Record, len(s.records))
	copy(out, s.records)
	return out
}

// LookupEffective returns the record in force for (name, role) at asOfMonth:
// among active records whose effective month is 0 or at most asOfMonth, the
// one with the greatest effective month, 0 losing to any positive month.
// Ties on month resolve to the highest revision. Nil when nothing matches.
func (s *RosterStore) LookupEffective(name string, role staff.Role, asOfMonth int) *staff.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupEffectiveLocked(name, role, asOfMonth)
}

func (s *RosterStore) lookupEffectiveLocked(name string, role staff.Role, asOfMonth int) *staff.Record {
	var best *staff.Record
	for _, r := range s.records {
		if r.Name != name || r.Role != role || r.Status != staff.StatusActive {
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

// LookupLatest returns the active record with the greatest effective month
// for (name, role) regardless of any as-of month. Used as the second fill
// fallback: the most-recently-known mapping.
func (s *RosterStore) LookupLatest(name string, role staff.Role) *staff.Record {
	return s.LookupEffective(name, role, 12)
}

// HasRecordAt reports whether any record for (name, role) exists at exactly
// the given effective month, whatever its status. The scanner relies on this
// for idempotence.
func (s *RosterStore) HasRecordAt(name string, role staff.Role, month int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Name == name && r.Role == role && r.EffectiveMonth == month {
			return true
		}
	}
	return false
}

// HasAny reports whether the person has any roster record at all.
func (s *RosterStore) HasAny(name string, role staff.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Name == name && r.Role == role {
			return true
		}
	}
	return false
}

// Commit appends the transaction's records to the snapshot, assigns IDs and
// revisions, and schedules an asynchronous save of the whole roster. The
// in-memory application is atomic with respect to other store calls.
func (s *RosterStore) Commit(ctx context.Context, tx *staff.Transaction) error {
	if tx == nil || tx.Empty() {
		return nil
	}

	s.mu.Lock()
	now := time.Now()
	for _, rec := range tx.Appends {
		if err := rec.Validate(); err != nil {
			s.mu.Unlock()
			return err
		}
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		rec.Revision = s.nextRevision
		s.nextRevision++
		rec.CreatedAt = now
		rec.UpdatedAt = now
		s.records = append(s.records, rec)
	}
	snapshot := make([]*staff.Record, len(s.records))
	copy(snapshot, s.records)
	s.mu.Unlock()

	s.persistAsync(snapshot)
	return nil
}

// Backfill fills a blank ParentName and/or Code on the record currently
// effective for (name, role) at asOfMonth. This is the only in-place
// mutation the roster permits; non-blank fields are never overwritten.
func (s *RosterStore) Backfill(name string, role staff.Role, asOfMonth int, parentName, code string) bool {
	s.mu.Lock()
	rec := s.lookupEffectiveLocked(name, role, asOfMonth)
	changed := false
	var field string
	if rec != nil {
		if rec.ParentName == "" && parentName != "" {
			rec.ParentName = parentName
			field = "parent_name"
			changed = true
		}
		if rec.Code == "" && code != "" {
			rec.Code = code
			if field == "" {
				field = "code"
			}
			changed = true
		}
		if changed {
			rec.UpdatedAt = time.Now()
		}
	}
	var snapshot []*staff.Record
	if changed {
		snapshot = make([]*staff.Record, len(s.records))
		copy(snapshot, s.records)
	}
	s.mu.Unlock()

	if changed {
		if s.publisher != nil {
			s.publisher.Publish(&staff.BackfilledEvent{Record: rec, Field: field})
		}
		s.persistAsync(snapshot)
	}
	return changed
}

func (s *RosterStore) persistAsync(snapshot []*staff.Record) {
	if s.repo == nil {
		return
	}
	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()
		if err := s.repo.ReplaceAll(s.persistCtx, snapshot); err != nil {
			s.persistMu.Lock()
			s.persistErr = err
			s.persistMu.Unlock()
			if s.log != nil {
				s.log.WithError(err).Error("roster: async persist failed")
			}
		}
	}()
}

// Flush waits for pending saves and returns the last persistence error, if
// any. In-memory state is never unwound on failure; re-running reconciliation
// is the retry path.
func (s *RosterStore) Flush() error {
	s.persistWG.Wait()
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	err := s.persistErr
	s.persistErr = nil
	return err
}
