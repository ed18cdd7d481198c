package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
)

func view(role staff.Role, name, parent string) *domain.PersonView {
	v := domain.NewPersonView(role, name)
	v.ParentName = parent
	return v
}

func TestClassify_AbsentFromAllSources(t *testing.T) {
	require.Nil(t, Classify(staff.RoleCustomerManager, "Ghost", nil, nil, nil))
}

func TestClassify_LedgerOnlyIsNewPerson(t *testing.T) {
	led := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	item := Classify(staff.RoleCustomerManager, "Alice", nil, nil, led)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffNewPerson, item.Kind)
	require.Equal(t, "Mgr1", item.SuggestedParent)
}

func TestClassify_SecondaryOnly(t *testing.T) {
	sec := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	item := Classify(staff.RoleCustomerManager, "Alice", nil, sec, nil)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffSecondaryOnly, item.Kind)
	require.Equal(t, "Mgr1", item.SuggestedParent)
}

func TestClassify_SecondaryAndLedgerAgreeIsNewPerson(t *testing.T) {
	sec := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	led := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	item := Classify(staff.RoleCustomerManager, "Alice", nil, sec, led)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffNewPerson, item.Kind)
	require.Equal(t, "Mgr1", item.SuggestedParent)
}

func TestClassify_SecondaryAndLedgerDisagreeIsConflict(t *testing.T) {
	sec := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	led := view(staff.RoleCustomerManager, "Alice", "Mgr2")
	item := Classify(staff.RoleCustomerManager, "Alice", nil, sec, led)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffConflict, item.Kind)
	require.Equal(t, "Mgr1", item.SuggestedParent)
}

func TestClassify_SystemOnlyIsInactive(t *testing.T) {
	sys := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	item := Classify(staff.RoleCustomerManager, "Alice", sys, nil, nil)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffInactive, item.Kind)
}

func TestClassify_SystemAndSecondary(t *testing.T) {
	sys := view(staff.RoleCustomerManager, "Alice", "Mgr1")

	agree := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	require.Nil(t, Classify(staff.RoleCustomerManager, "Alice", sys, agree, nil))

	disagree := view(staff.RoleCustomerManager, "Alice", "Mgr2")
	item := Classify(staff.RoleCustomerManager, "Alice", sys, disagree, nil)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffConflict, item.Kind)
	require.Equal(t, "Mgr2", item.SuggestedParent)
}

func TestClassify_SystemAndLedger(t *testing.T) {
	sys := view(staff.RoleCustomerManager, "Alice", "Mgr1")

	blank := view(staff.RoleCustomerManager, "Alice", "")
	item := Classify(staff.RoleCustomerManager, "Alice", sys, nil, blank)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffMissingParent, item.Kind)
	require.Equal(t, "Mgr1", item.SuggestedParent)

	newer := view(staff.RoleCustomerManager, "Alice", "Mgr2")
	item = Classify(staff.RoleCustomerManager, "Alice", sys, nil, newer)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffConflict, item.Kind)
	// Fresh ledger evidence wins the suggestion.
	require.Equal(t, "Mgr2", item.SuggestedParent)

	agree := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	require.Nil(t, Classify(staff.RoleCustomerManager, "Alice", sys, nil, agree))
}

func TestClassify_BlankRosterParentStillConflictsWithLedger(t *testing.T) {
	// The blank-is-not-evidence rule applies to the ledger parent only; a
	// blank roster assignment contradicted by the ledger is a Conflict.
	sys := view(staff.RoleCustomerManager, "Alice", "")
	led := view(staff.RoleCustomerManager, "Alice", "Mgr2")

	item := Classify(staff.RoleCustomerManager, "Alice", sys, nil, led)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffConflict, item.Kind)
	require.Equal(t, "Mgr2", item.SuggestedParent)
}

func TestClassify_AllThreeSources(t *testing.T) {
	sys := view(staff.RoleCustomerManager, "Alice", "Mgr1")

	t.Run("blank ledger parent with secondary conflict", func(t *testing.T) {
		sec := view(staff.RoleCustomerManager, "Alice", "Mgr2")
		led := view(staff.RoleCustomerManager, "Alice", "")
		item := Classify(staff.RoleCustomerManager, "Alice", sys, sec, led)
		require.NotNil(t, item)
		require.Equal(t, domain.DiffConflict, item.Kind)
		require.Equal(t, "Mgr2", item.SuggestedParent)
	})

	t.Run("blank ledger parent with secondary agreement", func(t *testing.T) {
		sec := view(staff.RoleCustomerManager, "Alice", "Mgr1")
		led := view(staff.RoleCustomerManager, "Alice", "")
		item := Classify(staff.RoleCustomerManager, "Alice", sys, sec, led)
		require.NotNil(t, item)
		require.Equal(t, domain.DiffMissingParent, item.Kind)
		require.Equal(t, "Mgr1", item.SuggestedParent)
	})

	t.Run("ledger disagrees with secondary", func(t *testing.T) {
		sec := view(staff.RoleCustomerManager, "Alice", "Mgr1")
		led := view(staff.RoleCustomerManager, "Alice", "Mgr3")
		item := Classify(staff.RoleCustomerManager, "Alice", sys, sec, led)
		require.NotNil(t, item)
		require.Equal(t, domain.DiffConflict, item.Kind)
		require.Equal(t, "Mgr3", item.SuggestedParent)
	})

	t.Run("ledger disagrees with system only", func(t *testing.T) {
		sec := view(staff.RoleCustomerManager, "Alice", "")
		led := view(staff.RoleCustomerManager, "Alice", "Mgr2")
		item := Classify(staff.RoleCustomerManager, "Alice", sys, sec, led)
		require.NotNil(t, item)
		require.Equal(t, domain.DiffConflict, item.Kind)
		require.Equal(t, "Mgr2", item.SuggestedParent)
	})

	t.Run("all agree", func(t *testing.T) {
		sec := view(staff.RoleCustomerManager, "Alice", "Mgr1")
		led := view(staff.RoleCustomerManager, "Alice", "Mgr1")
		require.Nil(t, Classify(staff.RoleCustomerManager, "Alice", sys, sec, led))
	})
}

func TestClassify_DirectorsNeverConflict(t *testing.T) {
	sys := view(staff.RoleDirector, "Dir1", "")
	sec := view(staff.RoleDirector, "Dir1", "")
	led := view(staff.RoleDirector, "Dir1", "")

	require.Nil(t, Classify(staff.RoleDirector, "Dir1", sys, sec, led))
	require.Nil(t, Classify(staff.RoleDirector, "Dir1", sys, sec, nil))
	require.Nil(t, Classify(staff.RoleDirector, "Dir1", sys, nil, led))

	item := Classify(staff.RoleDirector, "Dir1", nil, sec, led)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffNewPerson, item.Kind)

	item = Classify(staff.RoleDirector, "Dir1", sys, nil, nil)
	require.NotNil(t, item)
	require.Equal(t, domain.DiffInactive, item.Kind)
}

func TestClassify_CodePrefersFreshestSource(t *testing.T) {
	sys := view(staff.RoleCustomerManager, "Alice", "Mgr1")
	sys.Code = "SYS-1"
	sec := view(staff.RoleCustomerManager, "Alice", "Mgr2")
	sec.Code = "SEC-1"
	item := Classify(staff.RoleCustomerManager, "Alice", sys, sec, nil)
	require.NotNil(t, item)
	require.Equal(t, "SEC-1", item.Code)
}
