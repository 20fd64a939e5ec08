package records

import "context"

// Repository abstracts record persistence.
type Repository interface {
	Insert(ctx context.Context, record Record) (Record, error)
	Get(ctx context.Context, id int64) (Record, bool, error)
	// List returns records newest first.
	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

// Archiver copies a saved record to long-term object storage.
type Archiver interface {
	Archive(ctx context.Context, record Record) error
}

// Publisher announces saved records to downstream consumers.
type Publisher interface {
	PublishSaved(ctx context.Context, record Record) error
}

// Recorder receives collector counters.
type Recorder interface {
	RecordSaved(outcome string)
}
