package cloud

import "github.com/hemantobora/cloud-inventory/internal/models"

// GetSupportedProviders returns the cloud types the factory can build clients for
func GetSupportedProviders() []models.ProviderInfo {
	return []models.ProviderInfo{
		{
			Type:        models.CloudTypeOpenStack,
			Name:        "OpenStack",
			Description: "OpenStack compute (nova) via keystone v2/v3",
		},
		{
			Type:        models.CloudTypeAWS,
			Name:        "AWS",
			Description: "Amazon EC2 via shared config profiles",
		},
	}
}

// IsSupported reports whether cloudType has a client implementation
func IsSupported(cloudType string) bool {
	for _, p := range GetSupportedProviders() {
		if p.Type == cloudType {
			return true
		}
	}
	return false
}
