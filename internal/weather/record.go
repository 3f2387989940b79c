package weather

import (
	"time"

	"github.com/google/uuid"
)

// Resolved is a metric value that made it through resolution.
type Resolved struct {
	Name  string
	Value float64
}

// BuildRecord assembles a Record from the resolved metrics of one cycle.
func BuildRecord(ts time.Time, resolved []Resolved) Record {
	values := make(map[string]float64, len(resolved))
	for _, r := range resolved {
		values[r.Name] = r.Value
	}
	return Record{
		ID:        uuid.New(),
		Timestamp: ts.UTC(),
		Units:     UnitsUS,
		Values:    values,
	}
}
