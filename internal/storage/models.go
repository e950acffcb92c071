package storage

import "time"

// ProcessedMessage records a sales message that already produced a ledger
// mutation, together with what was applied. Replays of the same message ID
// are no-ops.
type ProcessedMessage struct {
	MessageID   string
	UserID      string
	Credits     int64
	RawAmount   string
	ProcessedAt time.Time
}

// Stats summarizes the credit system.
type Stats struct {
	Users        int64
	TotalCredits int64
	Processed    int64
	TopUserID    string
	TopBalance   int64
}
