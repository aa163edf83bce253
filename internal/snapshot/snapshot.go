// Package snapshot holds the EBS snapshot descriptor and the tag matching
// rules used to decide whether a snapshot is replicated.
package snapshot

import (
	"maps"
	"sort"
	"strings"
	"time"
)

// ProvenanceKey is the tag stamped on every snapshot this system creates.
// Cleanup selects on it and nothing else.
const ProvenanceKey = "created_by"

// Status mirrors the EC2 snapshot state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
	StatusRecoverable Status = "recoverable"
	StatusRecovering  Status = "recovering"
)

// Tags is a snapshot's tag set. Keys are unique.
type Tags map[string]string

// Descriptor is a snapshot as read from EC2 for one invocation.
type Descriptor struct {
	ID          string
	Tags        Tags
	Description string
	StartTime   time.Time
	Status      Status
}

// Matches reports whether every required key is present in tags with the
// same value. Extra keys in tags are ignored; an empty requirement matches.
func Matches(tags, required Tags) bool {
	for k, want := range required {
		got, ok := tags[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Match returns d and true when d's tags satisfy required.
func Match(d Descriptor, required Tags) (Descriptor, bool) {
	if !Matches(d.Tags, required) {
		return Descriptor{}, false
	}
	return d, true
}

// WithProvenance returns a copy of tags with created_by set to setupName.
// An existing created_by value is replaced, never duplicated.
func WithProvenance(tags Tags, setupName string) Tags {
	out := make(Tags, len(tags)+1)
	maps.Copy(out, tags)
	out[ProvenanceKey] = setupName
	return out
}

// Keys returns the tag keys in sorted order.
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IDFromARN returns the segment after the last "/", which is the EC2
// snapshot id for both ARNs and bare ids.
func IDFromARN(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
