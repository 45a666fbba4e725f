package models

import (
	"time"

	"github.com/google/uuid"
)

// ChangeAggregate summarises one correlation group: how many audit rows share the
// correlation id and the time span they cover. Computed per query, never stored.
type ChangeAggregate struct {
	CorrelationID uuid.UUID `db:"correlation_id"`
	Count         int       `db:"row_count"`
	Start         time.Time `db:"started_at"`
	End           time.Time `db:"ended_at"`
}

// Duration returns End - Start, never negative
func (a ChangeAggregate) Duration() time.Duration {
	d := a.End.Sub(a.Start)
	if d < 0 {
		return 0
	}
	return d
}
