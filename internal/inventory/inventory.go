// Package inventory aggregates hosts across every configured cloud.
package inventory

import (
	"context"

	"github.com/juju/loggo/v2"

	"github.com/hemantobora/cloud-inventory/internal/cloud"
	"github.com/hemantobora/cloud-inventory/internal/config"
	"github.com/hemantobora/cloud-inventory/internal/models"
)

var logger = loggo.GetLogger("cloudinventory.inventory")

// Loader resolves cloud configurations.
type Loader interface {
	GetAllCloudConfigs() ([]models.CloudConfig, error)
	GetOneCloudConfig(name string) (models.CloudConfig, error)
}

// ClientFactory builds one client handle per resolved configuration.
type ClientFactory interface {
	NewClient(cfg models.CloudConfig) (cloud.Client, error)
}

// NewLoaderFunc builds a Loader for a set of config files.
type NewLoaderFunc func(files []string) Loader

// Inventory holds one client per resolved cloud, in resolution order.
// The client list is fixed at construction.
type Inventory struct {
	clouds []cloud.Client
}

type options struct {
	cloudName   string
	configFiles []string
	newLoader   NewLoaderFunc
	factory     ClientFactory
}

// Option configures New.
type Option func(*options)

// WithCloud restricts the inventory to one named cloud.
func WithCloud(name string) Option {
	return func(o *options) { o.cloudName = name }
}

// WithConfigFiles overrides the clouds.yaml search path.
func WithConfigFiles(files ...string) Option {
	return func(o *options) { o.configFiles = files }
}

// WithLoader supplies the configuration loader constructor.
func WithLoader(fn NewLoaderFunc) Option {
	return func(o *options) { o.newLoader = fn }
}

// WithFactory supplies the client factory.
func WithFactory(f ClientFactory) Option {
	return func(o *options) { o.factory = f }
}

func defaultLoader(files []string) Loader {
	return config.NewLoader(files)
}

// New resolves configuration and creates one client per cloud. Any
// resolution failure is returned as *models.ConfigurationError and no
// Inventory is built.
func New(ctx context.Context, opts ...Option) (*Inventory, error) {
	o := options{newLoader: defaultLoader}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.configFiles) == 0 {
		o.configFiles = config.DefaultConfigFiles()
	}
	if o.factory == nil {
		o.factory = cloud.NewFactory()
	}

	loader := o.newLoader(o.configFiles)

	var configs []models.CloudConfig
	if o.cloudName != "" {
		cfg, err := loader.GetOneCloudConfig(o.cloudName)
		if err != nil {
			return nil, &models.ConfigurationError{Cloud: o.cloudName, Cause: err}
		}
		configs = []models.CloudConfig{cfg}
	} else {
		all, err := loader.GetAllCloudConfigs()
		if err != nil {
			return nil, &models.ConfigurationError{Cause: err}
		}
		configs = all
	}

	clouds := make([]cloud.Client, 0, len(configs))
	for _, cfg := range configs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		client, err := o.factory.NewClient(cfg)
		if err != nil {
			return nil, &models.ConfigurationError{Cloud: cfg.Name, Cause: err}
		}
		clouds = append(clouds, client)
	}
	logger.Debugf("inventory created with %d clouds", len(clouds))
	return &Inventory{clouds: clouds}, nil
}

// Clouds returns the client handles in aggregation order.
func (inv *Inventory) Clouds() []cloud.Client {
	return append([]cloud.Client(nil), inv.clouds...)
}

// ListHosts lists every cloud in order and concatenates the results. The
// first client error is returned as is.
func (inv *Inventory) ListHosts(ctx context.Context, expand bool) ([]models.Host, error) {
	var hosts []models.Host
	for _, c := range inv.clouds {
		servers, err := c.ListServers(ctx, expand)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, servers...)
	}
	return hosts, nil
}

// SearchHosts returns every host whose id or name equals nameOrID.
func (inv *Inventory) SearchHosts(ctx context.Context, nameOrID string, expand bool) ([]models.Host, error) {
	hosts, err := inv.ListHosts(ctx, expand)
	if err != nil {
		return nil, err
	}
	var matches []models.Host
	for _, h := range hosts {
		if h.Matches(nameOrID) {
			matches = append(matches, h)
		}
	}
	return matches, nil
}

// GetHost returns the first host matching nameOrID in aggregation order,
// or nil when nothing matches.
func (inv *Inventory) GetHost(ctx context.Context, nameOrID string, expand bool) (*models.Host, error) {
	matches, err := inv.SearchHosts(ctx, nameOrID, expand)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}
