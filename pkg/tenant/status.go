package tenant

import (
	"encoding/json"
	"fmt"
)

// Status is the resolution state of a Store.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusCleared Status = "cleared"
)

func (s Status) String() string { return string(s) }

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusLoading, StatusSuccess, StatusError, StatusCleared:
		return true
	}
	return false
}

// settled reports whether s is a final state worth persisting.
func (s Status) settled() bool {
	return s == StatusSuccess || s == StatusError || s == StatusCleared
}

func (s *Status) UnmarshalText(b []byte) error {
	v := Status(b)
	if !v.Valid() {
		return fmt.Errorf("unknown tenant status %q", string(b))
	}
	*s = v
	return nil
}

// Snapshot is the state of a Store at one point in time.
// Tenant is non-nil exactly when Status is StatusSuccess.
type Snapshot struct {
	Tenant *Tenant `json:"store"`
	Status Status  `json:"status"`
}

// normalize enforces the tenant/status invariant on decoded or caller-built
// snapshots.
func (s Snapshot) normalize() Snapshot {
	switch {
	case !s.Status.Valid(), s.Status == StatusLoading:
		return Snapshot{Status: StatusIdle}
	case s.Status == StatusSuccess && s.Tenant == nil:
		return Snapshot{Status: StatusIdle}
	case s.Status != StatusSuccess:
		return Snapshot{Status: s.Status}
	}
	return Snapshot{Tenant: s.Tenant.Clone(), Status: StatusSuccess}
}

func encodeSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
