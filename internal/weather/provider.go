package weather

import (
	"context"
	"time"
)

// Source abstracts a device endpoint returning current conditions.
type Source interface {
	Name() string
	Kind() SourceKind
	Fetch(ctx context.Context) (Payload, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveRecord(rec Record)
	GetLatest() (Record, error)
	GetRange(from, to time.Time) ([]Record, error)
}

// Sink receives every record produced by a poll cycle.
type Sink interface {
	Name() string
	Publish(ctx context.Context, rec Record) error
}
