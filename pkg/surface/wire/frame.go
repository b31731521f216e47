package wire

import (
	"encoding/json"

	"github.com/vango-dev/lux/pkg/surface"
)

// FrameType represents the type of a frame.
type FrameType string

const (
	FrameSnapshot FrameType = "snapshot"
	FrameOps      FrameType = "ops"
	FrameMerge    FrameType = "merge"
	FrameEvent    FrameType = "event"
	FrameError    FrameType = "error"
)

// Frame is one websocket message.
type Frame struct {
	Type     FrameType             `json:"type"`
	Seq      uint64                `json:"seq,omitempty"`
	Ops      []surface.Op          `json:"ops,omitempty"`
	Snapshot *surface.SnapshotNode `json:"snapshot,omitempty"`
	Merge    json.RawMessage       `json:"merge,omitempty"`
	Event    *surface.Event        `json:"event,omitempty"`
	Error    string                `json:"error,omitempty"`
}
