package openstack

import (
	"sort"

	"github.com/go-goose/goose/v5/nova"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

// normalizeServer flattens a nova server into a Host. Networks are walked in
// name order so that the first public/private address picked is stable.
func normalizeServer(cfg models.CloudConfig, s nova.ServerDetail, private bool) models.Host {
	h := models.Host{
		ID:               s.Id,
		Name:             s.Name,
		Cloud:            cfg.Name,
		Region:           cfg.Region,
		Status:           s.Status,
		AvailabilityZone: s.AvailabilityZone,
		Flavor:           entityName(s.Flavor),
		Image:            entityName(s.Image),
		ProjectID:        s.TenantId,
		HostID:           s.HostId,
		Detailed:         true,
	}
	if len(s.Metadata) > 0 {
		h.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			h.Metadata[k] = v
		}
	}

	networks := make([]string, 0, len(s.Addresses))
	for name := range s.Addresses {
		networks = append(networks, name)
	}
	sort.Strings(networks)

	for _, network := range networks {
		for _, addr := range s.Addresses[network] {
			version := addr.Version
			if version == 0 {
				version = 4
			}
			h.Addresses = append(h.Addresses, models.Address{
				Network: network,
				Address: addr.Address,
				Version: version,
				Type:    addr.Type,
			})

			switch {
			case version == 6:
				if h.PublicV6 == "" {
					h.PublicV6 = addr.Address
				}
			case addr.Type == "floating" || network == "public":
				if h.PublicV4 == "" {
					h.PublicV4 = addr.Address
				}
			default:
				if h.PrivateV4 == "" {
					h.PrivateV4 = addr.Address
				}
			}
		}
	}
	h.SelectInterfaceIP(private || cfg.Interface == "internal")
	return h
}

// entityName prefers the human name of a flavor or image, falling back to its id.
func entityName(e nova.Entity) string {
	if e.Name != "" {
		return e.Name
	}
	return e.Id
}
