// Package event decodes the EventBridge "EBS Snapshot Notification"
// envelope that triggers the share and copy handlers.
package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/snapshot"
)

// ErrNoSnapshotID is returned when detail.snapshot_id is absent or empty.
var ErrNoSnapshotID = errors.New("event has no detail.snapshot_id")

// ResultSucceeded is the detail.result value of a usable snapshot.
const ResultSucceeded = "succeeded"

// Detail is the detail object of an EBS snapshot notification.
type Detail struct {
	Event      string `json:"event"`
	Result     string `json:"result"`
	Cause      string `json:"cause"`
	SnapshotID string `json:"snapshot_id"`
	Source     string `json:"source"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// SnapshotEvent is a parsed trigger.
type SnapshotEvent struct {
	ID         string // EventBridge event id
	Region     string
	Account    string
	SnapshotID string // bare EC2 id, e.g. snap-0123
	Detail     Detail
}

// Actionable reports whether the notification is for a snapshot that
// finished successfully. Events without a result are treated as actionable.
func (e SnapshotEvent) Actionable() bool {
	return e.Detail.Result == "" || e.Detail.Result == ResultSucceeded
}

// Parse decodes a raw EventBridge envelope.
func Parse(raw []byte) (SnapshotEvent, error) {
	var env events.CloudWatchEvent
	if err := json.Unmarshal(raw, &env); err != nil {
		return SnapshotEvent{}, fmt.Errorf("decoding event envelope: %w", err)
	}
	return FromCloudWatch(env)
}

// FromCloudWatch extracts the snapshot id from an already-decoded envelope.
func FromCloudWatch(env events.CloudWatchEvent) (SnapshotEvent, error) {
	var d Detail
	if len(env.Detail) > 0 {
		if err := json.Unmarshal(env.Detail, &d); err != nil {
			return SnapshotEvent{}, fmt.Errorf("decoding event detail: %w", err)
		}
	}

	id := snapshot.IDFromARN(d.SnapshotID)
	if id == "" {
		return SnapshotEvent{}, ErrNoSnapshotID
	}

	return SnapshotEvent{
		ID:         env.ID,
		Region:     env.Region,
		Account:    env.AccountID,
		SnapshotID: id,
		Detail:     d,
	}, nil
}
