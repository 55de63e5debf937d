package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// NodeID is an opaque validator node identifier, e.g. "NodeID-BiucSKLqSh6nEFMngUG7iuJM1575apSsG".
type NodeID = string

// TrackedNodeSet is the ordered list of node IDs configured at startup.
// It is never mutated after construction.
type TrackedNodeSet struct {
	ids []NodeID
}

// NewTrackedNodeSet copies ids into an immutable set, dropping blanks and duplicates
// while keeping first-seen order.
func NewTrackedNodeSet(ids []string) TrackedNodeSet {
	seen := make(map[string]struct{}, len(ids))
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return TrackedNodeSet{ids: out}
}

// IDs returns a copy of the tracked node IDs in configured order.
func (s TrackedNodeSet) IDs() []NodeID {
	out := make([]NodeID, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s TrackedNodeSet) Len() int {
	return len(s.ids)
}

// UnixTime is a Unix timestamp in seconds. The platform API encodes
// timestamps as decimal strings; plain JSON numbers are accepted as well.
type UnixTime int64

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid unix timestamp %s: %w", data, err)
	}
	*t = UnixTime(v)
	return nil
}

func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Uptime is passed through exactly as the backend reported it.
// A quoted string loses its quotes, anything else keeps its raw JSON text.
type Uptime string

func (u *Uptime) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*u = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*u = Uptime(s)
		return nil
	}
	*u = Uptime(raw)
	return nil
}

func (u Uptime) String() string {
	if u == "" {
		return "unknown"
	}
	return string(u)
}

// ValidatorRecord is one entry of platform.getCurrentValidators.
type ValidatorRecord struct {
	NodeID    NodeID   `json:"nodeID"`
	Connected bool     `json:"connected"`
	Uptime    Uptime   `json:"uptime"`
	StartTime UnixTime `json:"startTime"`
	EndTime   UnixTime `json:"endTime"`
}

// InValidationPeriod reports whether now falls inside [StartTime, EndTime].
// Both bounds are inclusive. A record with StartTime > EndTime is never in period.
func (v ValidatorRecord) InValidationPeriod(now time.Time) bool {
	ts := now.Unix()
	return int64(v.StartTime) <= ts && ts <= int64(v.EndTime)
}

// Disconnected reports whether the node is down while it is expected to validate.
func (v ValidatorRecord) Disconnected(now time.Time) bool {
	return !v.Connected && v.InValidationPeriod(now)
}
