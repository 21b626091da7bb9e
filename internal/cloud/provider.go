// Package cloud defines the per-cloud client handle the inventory aggregates.
// This allows cloud-inventory to support multiple cloud providers (OpenStack, AWS, etc.)
package cloud

import (
	"context"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

// Client is a handle bound to one resolved cloud configuration
type Client interface {
	// Name returns the configured cloud name
	Name() string

	// Region returns the region the handle lists, empty if the cloud has none
	Region() string

	// ListServers returns the cloud's servers; detailed requests normalized,
	// fully populated host records
	ListServers(ctx context.Context, detailed bool) ([]models.Host, error)
}

// Validator is implemented by clients that can check their credentials
// without listing anything
type Validator interface {
	Validate(ctx context.Context) error
}
