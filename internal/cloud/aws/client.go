// internal/cloud/aws/client.go
package aws

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/juju/loggo/v2"

	"github.com/hemantobora/cloud-inventory/internal/cloud/throttle"
	"github.com/hemantobora/cloud-inventory/internal/models"
)

var logger = loggo.GetLogger("cloudinventory.cloud.aws")

// DefaultRegion is used when neither the cloud entry nor the profile sets one
const DefaultRegion = "us-east-1"

// STSAPI is the part of the STS client used to validate credentials
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Client lists EC2 instances for one profile and region
type Client struct {
	cfg     models.CloudConfig
	private bool
	limiter *throttle.Limiter

	loadConfig func(ctx context.Context, profile, region string) (aws.Config, error)
	newAPIs    func(aws.Config) (ec2.DescribeInstancesAPIClient, STSAPI)

	mu        sync.Mutex
	region    string
	ec2Client ec2.DescribeInstancesAPIClient
	stsClient STSAPI
}

// ClientOption is a functional option for client configuration
type ClientOption func(*Client)

// WithPrivate makes the private address the interface IP
func WithPrivate(private bool) ClientOption {
	return func(c *Client) {
		if private {
			c.private = true
		}
	}
}

// WithRateLimit overrides the configured API rate
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) { c.limiter = throttle.New(perSecond) }
}

// WithAPIs injects pre-built EC2 and STS clients, skipping config loading
func WithAPIs(ec2Client ec2.DescribeInstancesAPIClient, stsClient STSAPI) ClientOption {
	return func(c *Client) {
		c.ec2Client = ec2Client
		c.stsClient = stsClient
	}
}

// NewClient creates an EC2 client handle. The shared AWS config is loaded on
// first use.
func NewClient(cfg models.CloudConfig, options ...ClientOption) (*Client, error) {
	if cfg.Region == "" && cfg.AWSProfile == "" {
		logger.Debugf("%s: no region or profile, using SDK defaults", cfg.Name)
	}
	c := &Client{
		cfg:        cfg,
		private:    cfg.Private,
		limiter:    throttle.New(cfg.APIRateLimit),
		loadConfig: loadAWSConfig,
		newAPIs:    newAPIs,
		region:     cfg.Region,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Name returns the cloud name
func (c *Client) Name() string { return c.cfg.Name }

// Region returns the region in use. Without a configured region it is empty
// until the profile has been loaded by the first call.
func (c *Client) Region() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region
}

// loadAWSConfig loads AWS configuration with optional profile
func loadAWSConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{}
	if profile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, &models.ProviderError{
			Provider:  models.CloudTypeAWS,
			Operation: "load-config",
			Resource:  fmt.Sprintf("profile:%s", profile),
			Cause:     fmt.Errorf("failed to load AWS config: %w", err),
		}
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	return cfg, nil
}

func newAPIs(awsCfg aws.Config) (ec2.DescribeInstancesAPIClient, STSAPI) {
	return ec2.NewFromConfig(awsCfg), sts.NewFromConfig(awsCfg)
}

// clients builds the SDK clients on first use. The returned config carries
// the resolved region.
func (c *Client) clients(ctx context.Context) (ec2.DescribeInstancesAPIClient, STSAPI, models.CloudConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.cfg
	if c.ec2Client == nil {
		awsCfg, err := c.loadConfig(ctx, c.cfg.AWSProfile, c.cfg.Region)
		if err != nil {
			return nil, nil, cfg, err
		}
		if c.region == "" {
			c.region = awsCfg.Region
		}
		c.ec2Client, c.stsClient = c.newAPIs(awsCfg)
	}
	cfg.Region = c.region
	return c.ec2Client, c.stsClient, cfg, nil
}

// ListServers pages through DescribeInstances. Terminated instances are skipped.
func (c *Client) ListServers(ctx context.Context, detailed bool) ([]models.Host, error) {
	api, _, cfg, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}

	var hosts []models.Host
	paginator := ec2.NewDescribeInstancesPaginator(api, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, providerError(cfg, "describe-instances", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				if isTerminated(inst) {
					continue
				}
				hosts = append(hosts, normalizeInstance(cfg, aws.ToString(reservation.OwnerId), inst, detailed, c.private))
			}
		}
	}
	logger.Debugf("%s: %d instances", cfg, len(hosts))
	return hosts, nil
}

// Validate checks the credentials with sts:GetCallerIdentity
func (c *Client) Validate(ctx context.Context) error {
	_, stsClient, cfg, err := c.clients(ctx)
	if err != nil {
		return err
	}
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return providerError(cfg, "get-caller-identity", err)
	}
	logger.Debugf("%s: authenticated as %s", cfg, aws.ToString(out.Arn))
	return nil
}

func providerError(cfg models.CloudConfig, op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AuthFailure", "UnauthorizedOperation", "InvalidClientTokenId", "ExpiredToken":
			err = fmt.Errorf("credentials rejected for profile %q: %w", cfg.AWSProfile, err)
		}
	}
	return &models.ProviderError{
		Provider:  models.CloudTypeAWS,
		Operation: op,
		Resource:  cfg.String(),
		Cause:     err,
	}
}
