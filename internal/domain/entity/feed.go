package entity

import "time"

// FeedState tracks one submitted price-change batch through the external
// system.
type FeedState string

const (
	FeedSubmitted           FeedState = "submitted"
	FeedProcessing          FeedState = "processing"
	FeedCompleted           FeedState = "completed"
	FeedCompletedWithIssues FeedState = "completed_with_issues"
	FeedCheckFailed         FeedState = "check_failed"
)

// Terminal feeds are excluded from further polling. A failed check is not
// terminal: it is retried on the next cycle.
func (s FeedState) Terminal() bool {
	return s == FeedCompleted || s == FeedCompletedWithIssues
}

type FeedStatus struct {
	FeedID        string
	RecordID      string
	SKU           string
	ASIN          string
	State         FeedState
	LastCheckedAt time.Time
}
