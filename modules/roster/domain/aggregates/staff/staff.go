package staff

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDirector        Role = "director"
	RoleDeptManager     Role = "dept_manager"
	RoleCustomerManager Role = "customer_manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDirector, RoleDeptManager, RoleCustomerManager:
		return true
	}
	return false
}

// ParentRole returns the role of the immediate supervisor. Directors have
// none.
func (r Role) ParentRole() (Role, bool) {
	switch r {
	case RoleCustomerManager:
		return RoleDeptManager, true
	case RoleDeptManager:
		return RoleDirector, true
	}
	return "", false
}

type Status string

const (
	StatusActive      Status = "active"
	StatusTransferred Status = "transferred"
	StatusResigned    Status = "resigned"
)

// YearDefaultMonth marks a record that applies to any month without a more
// specific one.
const YearDefaultMonth = 0

// Record is one temporally-scoped assertion about a person's role and
// supervisor. Records are append-only; the only in-place mutation permitted
// is backfilling a previously blank ParentName or Code.
type Record struct {
	ID         uuid.UUID
	Name       string
	Code       string
	Role       Role
	ParentName string
	Status     Status
	// EffectiveMonth is 0 for the year default, otherwise 1-12 pinning the
	// record to on-or-after that calendar month.
	EffectiveMonth int
	// Revision is assigned by the store on append and strictly increases.
	// Equal effective months resolve to the highest revision.
	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("staff record requires a name")
	}
	if !r.Role.Valid() {
		return fmt.Errorf("invalid staff role %q", r.Role)
	}
	if r.EffectiveMonth < 0 || r.EffectiveMonth > 12 {
		return fmt.Errorf("effective month %d out of range 0-12", r.EffectiveMonth)
	}
	switch r.Status {
	case StatusActive, StatusTransferred, StatusResigned:
	default:
		return fmt.Errorf("invalid staff status %q", r.Status)
	}
	return nil
}

// Key identifies a person within the roster. Names are not unique across
// roles but are within one.
type Key struct {
	Role Role
	Name string
}

func (r *Record) Key() Key {
	return Key{Role: r.Role, Name: r.Name}
}

// Transaction is a batch of records to append, committed atomically by the
// store so the commit boundary is explicit rather than implicit in call
// order.
type Transaction struct {
	Appends []*Record
}

func (t *Transaction) Append(records ...*Record) {
	t.Appends = append(t.Appends, records...)
}

func (t *Transaction) Empty() bool {
	return len(t.Appends) == 0
}
