// Package openstack lists servers from an OpenStack cloud through nova.
package openstack

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-goose/goose/v5/client"
	gooseerrors "github.com/go-goose/goose/v5/errors"
	"github.com/go-goose/goose/v5/identity"
	"github.com/go-goose/goose/v5/nova"
	"github.com/juju/loggo/v2"

	"github.com/hemantobora/cloud-inventory/internal/cloud/throttle"
	"github.com/hemantobora/cloud-inventory/internal/models"
)

var logger = loggo.GetLogger("cloudinventory.cloud.openstack")

// computeAPI is the part of *nova.Client used for listing.
type computeAPI interface {
	ListServers(filter *nova.Filter) ([]nova.Entity, error)
	ListServersDetail(filter *nova.Filter) ([]nova.ServerDetail, error)
}

type authenticator interface {
	Authenticate() error
	IsAuthenticated() bool
}

// sessionFunc builds the authenticating client and the compute API for a cloud.
type sessionFunc func(cfg models.CloudConfig) (authenticator, computeAPI, error)

// Client is a lazily authenticated handle on one OpenStack cloud/region.
type Client struct {
	cfg        models.CloudConfig
	private    bool
	limiter    *throttle.Limiter
	newSession sessionFunc

	mu      sync.Mutex
	auth    authenticator
	compute computeAPI
}

// Option configures a Client.
type Option func(*Client)

// WithPrivate makes the private address the interface IP.
func WithPrivate(private bool) Option {
	return func(c *Client) {
		if private {
			c.private = true
		}
	}
}

// WithRateLimit overrides the configured API rate.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) { c.limiter = throttle.New(perSecond) }
}

// withSession replaces goose, for tests.
func withSession(fn sessionFunc) Option {
	return func(c *Client) { c.newSession = fn }
}

// NewClient validates cfg and returns a client. No request is made until
// the first listing.
func NewClient(cfg models.CloudConfig, opts ...Option) (*Client, error) {
	if cfg.Auth.AuthURL == "" {
		return nil, fmt.Errorf("cloud %s: auth_url is required", cfg)
	}
	if _, _, err := newCredentials(cfg); err != nil {
		return nil, fmt.Errorf("cloud %s: %w", cfg, err)
	}
	c := &Client{
		cfg:        cfg,
		private:    cfg.Private,
		limiter:    throttle.New(cfg.APIRateLimit),
		newSession: gooseSession,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the cloud name.
func (c *Client) Name() string { return c.cfg.Name }

// Region returns the cloud region.
func (c *Client) Region() string { return c.cfg.Region }

// ListServers returns the servers visible to the configured project.
// Undetailed listings carry only id and name.
func (c *Client) ListServers(ctx context.Context, detailed bool) ([]models.Host, error) {
	compute, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if !detailed {
		entities, err := compute.ListServers(nil)
		if err != nil {
			return nil, c.providerError("list-servers", err)
		}
		hosts := make([]models.Host, 0, len(entities))
		for _, e := range entities {
			hosts = append(hosts, models.Host{ID: e.Id, Name: e.Name, Cloud: c.cfg.Name, Region: c.cfg.Region})
		}
		logger.Debugf("%s: %d servers", c.cfg, len(hosts))
		return hosts, nil
	}

	servers, err := compute.ListServersDetail(nil)
	if err != nil {
		return nil, c.providerError("list-servers-detail", err)
	}
	hosts := make([]models.Host, 0, len(servers))
	for _, s := range servers {
		hosts = append(hosts, normalizeServer(c.cfg, s, c.private))
	}
	logger.Debugf("%s: %d detailed servers", c.cfg, len(hosts))
	return hosts, nil
}

// Validate authenticates against keystone.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.session(ctx)
	return err
}

// session authenticates on first use and returns the compute API.
func (c *Client) session(ctx context.Context) (computeAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.compute == nil {
		auth, compute, err := c.newSession(c.cfg)
		if err != nil {
			return nil, c.providerError("connect", err)
		}
		c.auth, c.compute = auth, compute
	}
	if c.auth.IsAuthenticated() {
		return c.compute, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := c.auth.Authenticate(); err != nil {
		logger.Debugf("%s: Authenticate() failed: %v", c.cfg, err)
		if gooseerrors.IsUnauthorised(err) {
			err = fmt.Errorf("%w\nPlease ensure the credentials are correct. A common mistake is "+
				"to specify the wrong project name or domain", err)
		}
		return nil, c.providerError("authenticate", err)
	}
	return c.compute, nil
}

func (c *Client) providerError(op string, err error) error {
	return &models.ProviderError{
		Provider:  models.CloudTypeOpenStack,
		Operation: op,
		Resource:  c.cfg.String(),
		Cause:     err,
	}
}

func gooseSession(cfg models.CloudConfig) (authenticator, computeAPI, error) {
	cred, mode, err := newCredentials(cfg)
	if err != nil {
		return nil, nil, err
	}
	authClient := client.NewClient(&cred, mode, nil)
	return authClient, nova.New(authClient), nil
}

// newCredentials maps a cloud's auth block onto goose credentials. Keystone
// v3 is used when requested explicitly or when any domain is configured.
func newCredentials(cfg models.CloudConfig) (identity.Credentials, identity.AuthMode, error) {
	auth := cfg.Auth
	cred := identity.Credentials{
		URL:        auth.AuthURL,
		Region:     cfg.Region,
		TenantName: auth.ProjectName,
		TenantID:   auth.ProjectID,
	}

	if auth.AccessKey != "" {
		if auth.SecretKey == "" {
			return identity.Credentials{}, 0, fmt.Errorf("access_key requires secret_key")
		}
		cred.User = auth.AccessKey
		cred.Secrets = auth.SecretKey
		return cred, identity.AuthKeyPair, nil
	}

	cred.User = auth.Username
	cred.Secrets = auth.Password
	cred.UserDomain = auth.UserDomainName
	cred.ProjectDomain = auth.ProjectDomainName
	cred.Domain = auth.DomainName

	var mode identity.AuthMode
	switch {
	case cfg.IdentityVersion > 0 && cfg.IdentityVersion < 3:
		mode = identity.AuthUserPass
		cred.Version = cfg.IdentityVersion
	case cfg.IdentityVersion >= 3:
		mode = identity.AuthUserPassV3
		cred.Version = cfg.IdentityVersion
	case cred.Domain != "" || cred.UserDomain != "" || cred.ProjectDomain != "":
		mode = identity.AuthUserPassV3
	default:
		mode = identity.AuthUserPass
	}
	return cred, mode, nil
}
