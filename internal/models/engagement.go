package models

import "time"

// Engagement event types published to Kafka and applied to the daily
// counters by the statistics consumer.
const (
	EngagementVisit          = "visit"
	EngagementItemSaved      = "item_saved"
	EngagementItemUnsaved    = "item_unsaved"
	EngagementCommentAdded   = "comment_added"
	EngagementCommentDeleted = "comment_deleted"
	EngagementUserDisabled   = "user_disabled"
)

// EngagementEvent is the payload streamed on the engagement topic.
// UserID/ItemID/CommentID are hex object ids and are set depending on Type.
type EngagementEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	ItemID    string    `json:"item_id,omitempty"`
	CommentID string    `json:"comment_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
