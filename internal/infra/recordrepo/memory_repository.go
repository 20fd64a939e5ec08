package recordrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/diabetes-risk/internal/domain/records"
)

// MemoryRepository keeps records in process for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[int64]records.Record
	seq     int64
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[int64]records.Record)}
}

// Insert assigns the next ID and stores the record.
func (r *MemoryRepository) Insert(_ context.Context, record records.Record) (records.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	record.ID = r.seq
	r.records[record.ID] = record
	return record, nil
}

// Get returns a record by ID.
func (r *MemoryRepository) Get(_ context.Context, id int64) (records.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	return record, ok, nil
}

// List filters and pages records, newest first.
func (r *MemoryRepository) List(_ context.Context, filter records.ListFilter) ([]records.Record, error) {
	r.mu.RLock()
	out := make([]records.Record, 0, len(r.records))
	for _, record := range r.records {
		if filter.RiskCategory != "" && record.RiskCategory != filter.RiskCategory {
			continue
		}
		if filter.Sex != "" && record.Sex != filter.Sex {
			continue
		}
		out = append(out, record)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Offset >= len(out) {
		return []records.Record{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

var _ records.Repository = (*MemoryRepository)(nil)
