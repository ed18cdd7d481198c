package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
	rosterservices "github.com/fieldops/salesrecon/modules/roster/services"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func staffRecord(name string, role staff.Role, parent string, month int, status staff.Status, rev int64) *staff.Record {
	return &staff.Record{
		Name:           name,
		Role:           role,
		ParentName:     parent,
		Status:         status,
		EffectiveMonth: month,
		Revision:       rev,
	}
}

func seededStore(records ...*staff.Record) *rosterservices.RosterStore {
	store := rosterservices.NewRosterStore(nil, nil, quietLogger())
	store.SetRecords(records)
	return store
}

func ledgerView(role staff.Role, name string, months ...int) *domain.PersonView {
	v := domain.NewPersonView(role, name)
	for _, m := range months {
		v.ObserveMonth(m)
	}
	return v
}

func TestApply_IgnoresRejectedAndUnresolvedItems(t *testing.T) {
	store := seededStore()
	applier := NewApplier(store, nil, quietLogger())

	items := []*domain.DiffItem{
		{Role: staff.RoleCustomerManager, Name: "Alice", Kind: domain.DiffNewPerson, SuggestedParent: "Mgr1", Action: domain.ActionReject},
		{Role: staff.RoleCustomerManager, Name: "Beth", Kind: domain.DiffNewPerson, SuggestedParent: "Mgr1"},
		{Role: staff.RoleCustomerManager, Name: "Cara", Kind: domain.DiffConflict, Action: domain.ActionModify},
	}
	changed, err := applier.Apply(context.Background(), items)
	require.NoError(t, err)
	require.Zero(t, changed)
	require.False(t, store.HasAny("Alice", staff.RoleCustomerManager))
}

func TestApply_AcceptedNewPersonAtFirstLedgerMonth(t *testing.T) {
	store := seededStore()
	applier := NewApplier(store, nil, quietLogger())

	item := &domain.DiffItem{
		Role:            staff.RoleCustomerManager,
		Name:            "Alice",
		Code:            "E-7",
		Kind:            domain.DiffNewPerson,
		Ledger:          ledgerView(staff.RoleCustomerManager, "Alice", 4, 6),
		SuggestedParent: "Mgr1",
		Action:          domain.ActionAccept,
	}
	changed, err := applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	rec := store.LookupEffective("Alice", staff.RoleCustomerManager, 4)
	require.NotNil(t, rec)
	require.Equal(t, "Mgr1", rec.ParentName)
	require.Equal(t, "E-7", rec.Code)
	require.Equal(t, 4, rec.EffectiveMonth)
	require.Nil(t, store.LookupEffective("Alice", staff.RoleCustomerManager, 3))
}

func TestApply_AcceptedConflictWritesTransferPair(t *testing.T) {
	store := seededStore(
		staffRecord("Alice", staff.RoleCustomerManager, "Mgr1", 0, staff.StatusActive, 1),
	)
	applier := NewApplier(store, nil, quietLogger())

	item := &domain.DiffItem{
		Role:            staff.RoleCustomerManager,
		Name:            "Alice",
		Kind:            domain.DiffConflict,
		Ledger:          ledgerView(staff.RoleCustomerManager, "Alice", 4),
		SuggestedParent: "Mgr2",
		Action:          domain.ActionAccept,
	}
	changed, err := applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	// History preserved: the old assignment still answers for earlier months.
	require.Equal(t, "Mgr1", store.LookupEffective("Alice", staff.RoleCustomerManager, 3).ParentName)
	require.Equal(t, "Mgr2", store.LookupEffective("Alice", staff.RoleCustomerManager, 4).ParentName)
	require.Equal(t, "Mgr2", store.LookupEffective("Alice", staff.RoleCustomerManager, 9).ParentName)

	var closed *staff.Record
	for _, rec := range store.Records() {
		if rec.Status == staff.StatusTransferred {
			closed = rec
		}
	}
	require.NotNil(t, closed)
	require.Equal(t, "Mgr1", closed.ParentName)
	require.Equal(t, 4, closed.EffectiveMonth)
}

func TestApply_ModifiedParentOverridesSuggestion(t *testing.T) {
	store := seededStore(
		staffRecord("Alice", staff.RoleCustomerManager, "Mgr1", 0, staff.StatusActive, 1),
	)
	applier := NewApplier(store, nil, quietLogger())

	item := &domain.DiffItem{
		Role:            staff.RoleCustomerManager,
		Name:            "Alice",
		Kind:            domain.DiffConflict,
		Ledger:          ledgerView(staff.RoleCustomerManager, "Alice", 5),
		SuggestedParent: "Mgr2",
		ConfirmedParent: "Mgr3",
		Action:          domain.ActionModify,
	}
	changed, err := applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Equal(t, 1, changed)
	require.Equal(t, "Mgr3", store.LookupEffective("Alice", staff.RoleCustomerManager, 5).ParentName)
}

func TestApply_NoOpWhenParentAlreadyMatches(t *testing.T) {
	store := seededStore(
		staffRecord("Alice", staff.RoleCustomerManager, "Mgr1", 0, staff.StatusActive, 1),
	)
	applier := NewApplier(store, nil, quietLogger())

	item := &domain.DiffItem{
		Role:            staff.RoleCustomerManager,
		Name:            "Alice",
		Kind:            domain.DiffConflict,
		Ledger:          ledgerView(staff.RoleCustomerManager, "Alice", 4),
		SuggestedParent: "Mgr1",
		Action:          domain.ActionAccept,
	}
	changed, err := applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Zero(t, changed)
	require.Len(t, store.Records(), 1)
}

func TestApply_NoEffectiveRecordAtMonthIsSkipped(t *testing.T) {
	// The person exists but their only record starts later in the year, so
	// there is nothing in force to transfer away from.
	store := seededStore(
		staffRecord("Alice", staff.RoleCustomerManager, "Mgr1", 9, staff.StatusActive, 1),
	)
	applier := NewApplier(store, nil, quietLogger())

	item := &domain.DiffItem{
		Role:            staff.RoleCustomerManager,
		Name:            "Alice",
		Kind:            domain.DiffConflict,
		Ledger:          ledgerView(staff.RoleCustomerManager, "Alice", 4),
		SuggestedParent: "Mgr2",
		Action:          domain.ActionAccept,
	}
	changed, err := applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Zero(t, changed)
}

func TestApply_BlankCurrentParentIsBackfilledInPlace(t *testing.T) {
	store := seededStore(
		staffRecord("Alice", staff.RoleCustomerManager, "", 0, staff.StatusActive, 1),
	)
	applier := NewApplier(store, nil, quietLogger())

	item := &domain.DiffItem{
		Role:            staff.RoleCustomerManager,
		Name:            "Alice",
		Code:            "E-3",
		Kind:            domain.DiffMissingParent,
		Ledger:          ledgerView(staff.RoleCustomerManager, "Alice", 4),
		SuggestedParent: "Mgr1",
		Action:          domain.ActionAccept,
	}
	changed, err := applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	// The blank field is corrected on the existing record; no transfer pair
	// from an empty assignment is fabricated.
	require.Len(t, store.Records(), 1)
	rec := store.LookupEffective("Alice", staff.RoleCustomerManager, 4)
	require.Equal(t, "Mgr1", rec.ParentName)
	require.Equal(t, "E-3", rec.Code)
}

func TestApply_MatchingParentStillFillsBlankCode(t *testing.T) {
	store := seededStore(
		staffRecord("Alice", staff.RoleCustomerManager, "Mgr1", 0, staff.StatusActive, 1),
	)
	applier := NewApplier(store, nil, quietLogger())

	item := &domain.DiffItem{
		Role:            staff.RoleCustomerManager,
		Name:            "Alice",
		Code:            "E-5",
		Kind:            domain.DiffMissingParent,
		Ledger:          ledgerView(staff.RoleCustomerManager, "Alice", 4),
		SuggestedParent: "Mgr1",
		Action:          domain.ActionAccept,
	}
	changed, err := applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Equal(t, 1, changed)
	require.Len(t, store.Records(), 1)
	require.Equal(t, "E-5", store.LookupEffective("Alice", staff.RoleCustomerManager, 4).Code)

	// Re-applying finds nothing left to fill.
	changed, err = applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Zero(t, changed)
}

func TestApply_FallsBackToCurrentMonthWithoutLedgerEvidence(t *testing.T) {
	orig := nowMonth
	nowMonth = func() int { return 8 }
	defer func() { nowMonth = orig }()

	store := seededStore()
	applier := NewApplier(store, nil, quietLogger())

	item := &domain.DiffItem{
		Role:            staff.RoleCustomerManager,
		Name:            "Alice",
		Kind:            domain.DiffSecondaryOnly,
		SuggestedParent: "Mgr1",
		Action:          domain.ActionAccept,
	}
	changed, err := applier.Apply(context.Background(), []*domain.DiffItem{item})
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	rec := store.LookupEffective("Alice", staff.RoleCustomerManager, 8)
	require.NotNil(t, rec)
	require.Equal(t, 8, rec.EffectiveMonth)
}
