package models

import "fmt"

// ConfigurationError is the single error kind the inventory returns when cloud
// configuration cannot be resolved, whatever the loader behind it reported.
type ConfigurationError struct {
	Cloud string // requested cloud name, empty when all clouds were requested
	Cause error
}

func (e *ConfigurationError) Error() string {
	if e.Cloud != "" {
		return fmt.Sprintf("cloud configuration error for '%s': %v", e.Cloud, e.Cause)
	}
	return fmt.Sprintf("cloud configuration error: %v", e.Cause)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// LoaderError is reported by the config loader for unknown clouds and
// unreadable or malformed configuration files
type LoaderError struct {
	Cloud string
	Path  string
	Cause error
}

func (e *LoaderError) Error() string {
	switch {
	case e.Path != "" && e.Cloud != "":
		return fmt.Sprintf("loading cloud '%s' from '%s': %v", e.Cloud, e.Path, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("loading '%s': %v", e.Path, e.Cause)
	default:
		return fmt.Sprintf("loading cloud '%s': %v", e.Cloud, e.Cause)
	}
}

func (e *LoaderError) Unwrap() error {
	return e.Cause
}

// ProviderError represents cloud provider operation errors
type ProviderError struct {
	Provider  string // "openstack", "aws"
	Operation string // "authenticate", "list-servers", "load-config", etc.
	Resource  string // cloud/region, profile, bucket
	Cause     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error during %s operation on resource '%s': %v",
		e.Provider, e.Operation, e.Resource, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// FilterError represents a host filter expression that failed to compile or evaluate
type FilterError struct {
	Expression string
	Host       string // empty for compile errors
	Cause      error
}

func (e *FilterError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("filter '%s' failed on host '%s': %v", e.Expression, e.Host, e.Cause)
	}
	return fmt.Sprintf("invalid filter '%s': %v", e.Expression, e.Cause)
}

func (e *FilterError) Unwrap() error {
	return e.Cause
}
