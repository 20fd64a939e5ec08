package resultstore

import (
	"fmt"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

const defaultPrefix = "risk"

// slotKey scopes the fixed result slot name to a session.
func slotKey(prefix, sessionID string) string {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return fmt.Sprintf("%s:%s:%s", prefix, sessionID, risk.ResultSlot)
}
