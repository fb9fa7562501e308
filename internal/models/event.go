package models

import "time"

// Pipeline event types recorded in the event log.
const (
	EventStart        = "START"
	EventStop         = "STOP"
	EventGainChange   = "GAIN_CHANGE"
	EventConfigChange = "CONFIG_CHANGE"
	EventDecodeError  = "DECODE_ERROR"
	EventConfigError  = "CONFIG_ERROR"
	EventChannelError = "CHANNEL_ERROR"
)

// PipelineEvent is a single log entry.
type PipelineEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | STOP | GAIN_CHANGE | CONFIG_CHANGE | *_ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
