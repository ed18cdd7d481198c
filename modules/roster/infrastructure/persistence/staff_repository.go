package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
	"github.com/fieldops/salesrecon/pkg/composables"
)

var (
	ErrStaffNotFound = gerrors.New("staff record not found")
)

const (
	selectStaffSQL = `
		SELECT id, name, code, role, parent_name, status, effective_month, revision, created_at, updated_at
		FROM staff_records
		ORDER BY revision`
	insertStaffSQL = `
		INSERT INTO staff_records (id, name, code, role, parent_name, status, effective_month, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	deleteStaffSQL = `DELETE FROM staff_records`
)

type PgStaffRepository struct{}

func NewStaffRepository() staff.Repository {
	return &PgStaffRepository{}
}

func (g *PgStaffRepository) GetAll(ctx context.Context) ([]*staff.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, selectStaffSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*staff.Record
	for rows.Next() {
		rec, err := scanStaffRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (g *PgStaffRepository) ReplaceAll(ctx context.Context, records []*staff.Record) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(txCtx, deleteStaffSQL); err != nil {
			return err
		}
		for _, rec := range records {
			_, err := tx.Exec(txCtx, insertStaffSQL,
				rec.ID,
				rec.Name,
				rec.Code,
				string(rec.Role),
				rec.ParentName,
				string(rec.Status),
				rec.EffectiveMonth,
				rec.Revision,
				pgTimestamp(rec.CreatedAt),
				pgTimestamp(rec.UpdatedAt),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func scanStaffRecord(rows pgx.Rows) (*staff.Record, error) {
	var (
		rec       staff.Record
		role      string
		status    string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := rows.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Code,
		&role,
		&rec.ParentName,
		&status,
		&rec.EffectiveMonth,
		&rec.Revision,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	rec.Role = staff.Role(role)
	rec.Status = staff.Status(status)
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	return &rec, nil
}
