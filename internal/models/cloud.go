// Package models provides shared data structures used across cloud-inventory
package models

import "fmt"

// Cloud types understood by the client factory
const (
	CloudTypeOpenStack = "openstack"
	CloudTypeAWS       = "aws"
)

// AuthConfig holds the credentials block of a single cloud entry
type AuthConfig struct {
	AuthURL           string `yaml:"auth_url,omitempty" json:"auth_url,omitempty"`
	Username          string `yaml:"username,omitempty" json:"username,omitempty"`
	Password          string `yaml:"password,omitempty" json:"-"`
	ProjectName       string `yaml:"project_name,omitempty" json:"project_name,omitempty"`
	ProjectID         string `yaml:"project_id,omitempty" json:"project_id,omitempty"`
	UserDomainName    string `yaml:"user_domain_name,omitempty" json:"user_domain_name,omitempty"`
	ProjectDomainName string `yaml:"project_domain_name,omitempty" json:"project_domain_name,omitempty"`
	DomainName        string `yaml:"domain_name,omitempty" json:"domain_name,omitempty"`
	AccessKey         string `yaml:"access_key,omitempty" json:"access_key,omitempty"`
	SecretKey         string `yaml:"secret_key,omitempty" json:"-"`
}

// CloudConfig is the resolved configuration for one cloud in one region.
// It is produced by the config loader and handed, by value, to the client factory.
type CloudConfig struct {
	Name            string         `json:"name"`
	Region          string         `json:"region,omitempty"`
	Type            string         `json:"type"`
	Auth            AuthConfig     `json:"auth"`
	IdentityVersion int            `json:"identity_api_version,omitempty"`
	AWSProfile      string         `json:"aws_profile,omitempty"`
	Interface       string         `json:"interface,omitempty"`
	Private         bool           `json:"private,omitempty"`
	APIRateLimit    float64        `json:"api_rate_limit,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// String identifies the cloud/region pair in logs and errors
func (c CloudConfig) String() string {
	if c.Region == "" {
		return c.Name
	}
	return fmt.Sprintf("%s/%s", c.Name, c.Region)
}

// CloudType returns the configured type, defaulting to OpenStack
func (c CloudConfig) CloudType() string {
	if c.Type == "" {
		return CloudTypeOpenStack
	}
	return c.Type
}
