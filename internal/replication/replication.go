// Package replication decides, per snapshot notification, whether a
// snapshot is shared with the target account or copied into the target
// region, and issues the corresponding EC2 call.
package replication

import (
	"context"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/event"
)

// Action is what a handler did with a snapshot.
type Action string

const (
	ActionShared  Action = "shared"
	ActionCopied  Action = "copied"
	ActionSkipped Action = "skipped"
)

// Outcome is the result of one handler invocation.
type Outcome struct {
	Action     Action `json:"action"`
	SnapshotID string `json:"snapshotId"`
	// CopyID is the id of the snapshot created by a copy.
	CopyID string `json:"copyId,omitempty"`
	// Reason explains a skip.
	Reason string `json:"reason,omitempty"`
}

func skipped(id, reason string) Outcome {
	return Outcome{Action: ActionSkipped, SnapshotID: id, Reason: reason}
}

const (
	reasonNotSucceeded = "snapshot notification did not succeed"
	reasonNoMatch      = "tags do not match"
)

// Handler is implemented by Sharer and Copier.
type Handler interface {
	Handle(ctx context.Context, ev event.SnapshotEvent) (Outcome, error)
}
