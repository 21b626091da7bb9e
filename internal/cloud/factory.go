package cloud

import (
	"fmt"

	"github.com/hemantobora/cloud-inventory/internal/cloud/aws"
	"github.com/hemantobora/cloud-inventory/internal/cloud/openstack"
	"github.com/hemantobora/cloud-inventory/internal/models"
)

// Factory creates cloud clients based on configuration
type Factory struct {
	opts factoryOptions
}

// Option is a functional option for factory configuration
type Option func(*factoryOptions)

type factoryOptions struct {
	private   bool
	rateLimit float64
}

// WithPrivate makes every client prefer private addresses for the interface IP
func WithPrivate(private bool) Option {
	return func(o *factoryOptions) {
		o.private = private
	}
}

// WithRateLimit sets the API rate for clouds that do not configure one
func WithRateLimit(perSecond float64) Option {
	return func(o *factoryOptions) {
		o.rateLimit = perSecond
	}
}

// NewFactory creates a new client factory
func NewFactory(options ...Option) *Factory {
	f := &Factory{}
	for _, opt := range options {
		opt(&f.opts)
	}
	return f
}

// NewClient creates a client for the cloud type named in cfg.
// Supported types: "openstack", "aws". No network calls are made.
func (f *Factory) NewClient(cfg models.CloudConfig) (Client, error) {
	rate := f.rateLimit(cfg)

	var (
		client Client
		err    error
	)
	switch cfg.CloudType() {
	case models.CloudTypeOpenStack:
		client, err = openstack.NewClient(cfg, openstack.WithPrivate(f.opts.private), openstack.WithRateLimit(rate))
	case models.CloudTypeAWS:
		client, err = aws.NewClient(cfg, aws.WithPrivate(f.opts.private), aws.WithRateLimit(rate))
	default:
		err = fmt.Errorf("unsupported cloud type %q for cloud %s", cfg.Type, cfg)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// rateLimit is the API rate for cfg: its own setting, else the factory's.
func (f *Factory) rateLimit(cfg models.CloudConfig) float64 {
	if cfg.APIRateLimit != 0 {
		return cfg.APIRateLimit
	}
	return f.opts.rateLimit
}
