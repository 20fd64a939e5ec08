package resultstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

// ValkeyStore persists result slots in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	logger *slog.Logger
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, logger *slog.Logger) *ValkeyStore {
	return &ValkeyStore{client: client, prefix: prefix, logger: logger.With("component", "resultstore.valkey")}
}

// Save overwrites the session's slot.
func (s *ValkeyStore) Save(ctx context.Context, sessionID string, assessment risk.Assessment, ttl time.Duration) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(slotKey(s.prefix, sessionID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// Load reads the slot. A payload that no longer decodes is reported absent.
func (s *ValkeyStore) Load(ctx context.Context, sessionID string) (risk.Assessment, bool, error) {
	key := slotKey(s.prefix, sessionID)
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return risk.Assessment{}, false, nil
		}
		return risk.Assessment{}, false, err
	}
	var assessment risk.Assessment
	if err := json.Unmarshal([]byte(payload), &assessment); err != nil {
		s.logger.Warn("discarding undecodable result slot", "key", key, "error", err)
		return risk.Assessment{}, false, nil
	}
	return assessment, true, nil
}

var _ risk.ResultStore = (*ValkeyStore)(nil)
