package persistence

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func pgTimestamp(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}
