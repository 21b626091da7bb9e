package models

// ProviderInfo contains information about a supported cloud provider
type ProviderInfo struct {
	Name        string `json:"name"`        // "OpenStack", "AWS"
	Type        string `json:"type"`        // "openstack", "aws"
	Description string `json:"description"` // API the driver talks to
}

// CloudSummary describes one configured cloud for the `clouds` command
type CloudSummary struct {
	Name   string `json:"name" yaml:"name"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
	Type   string `json:"type" yaml:"type"`
}
