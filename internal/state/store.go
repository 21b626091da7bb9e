// Package state provides persistent storage for inventory snapshots
package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

// ErrSnapshotNotFound is returned when no snapshot exists under a name or version
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotMetadata describes a stored snapshot
type SnapshotMetadata struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description,omitempty"`
	Clouds      []string  `json:"clouds"`
	HostCount   int       `json:"host_count"`
	Size        int64     `json:"size"`
}

// Snapshot is a point-in-time copy of the aggregated host list
type Snapshot struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Hosts    []models.Host    `json:"hosts"`
}

// Store defines the interface for snapshot storage
type Store interface {
	// SaveSnapshot stores snap as the current snapshot for name and as a new version
	SaveSnapshot(ctx context.Context, name string, snap *Snapshot) error

	// GetSnapshot retrieves the current snapshot for name
	GetSnapshot(ctx context.Context, name string) (*Snapshot, error)

	// GetSnapshotVersion retrieves a specific version
	GetSnapshotVersion(ctx context.Context, name, version string) (*Snapshot, error)

	// ListSnapshots lists the current snapshot of every name
	ListSnapshots(ctx context.Context) ([]SnapshotMetadata, error)
}

// NewSnapshot builds a snapshot of hosts; the cloud list is derived from them
func NewSnapshot(name string, hosts []models.Host) *Snapshot {
	seen := map[string]bool{}
	var clouds []string
	for _, h := range hosts {
		if h.Cloud != "" && !seen[h.Cloud] {
			seen[h.Cloud] = true
			clouds = append(clouds, h.Cloud)
		}
	}
	sort.Strings(clouds)
	if hosts == nil {
		hosts = []models.Host{}
	}
	return &Snapshot{
		Metadata: SnapshotMetadata{
			Name:      name,
			CreatedAt: time.Now().UTC(),
			Clouds:    clouds,
			HostCount: len(hosts),
		},
		Hosts: hosts,
	}
}

// ValidationError represents a snapshot validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// ValidateSnapshot checks that a snapshot can be stored
func ValidateSnapshot(snap *Snapshot) error {
	if snap == nil {
		return ValidationError{Field: "snapshot", Message: "snapshot cannot be nil"}
	}
	if snap.Metadata.HostCount != len(snap.Hosts) {
		return ValidationError{
			Field:   "metadata.host_count",
			Message: fmt.Sprintf("host count %d does not match %d hosts", snap.Metadata.HostCount, len(snap.Hosts)),
		}
	}
	for i, h := range snap.Hosts {
		if h.ID == "" {
			return ValidationError{Field: fmt.Sprintf("hosts[%d].id", i), Message: "host ID is required"}
		}
	}
	return nil
}

// ValidateName rejects names that cannot be used as a key segment
func ValidateName(name string) error {
	if name == "" {
		return ValidationError{Field: "name", Message: "snapshot name is required"}
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.') {
			return ValidationError{Field: "name", Message: fmt.Sprintf("invalid character %q in %q", r, name)}
		}
	}
	return nil
}
