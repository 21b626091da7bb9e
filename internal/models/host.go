package models

// Address is a single network address reported for a host
type Address struct {
	Network string `json:"network" yaml:"network"`
	Address string `json:"address" yaml:"address"`
	Version int    `json:"version" yaml:"version"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"` // "fixed" or "floating"
}

// Host is the cloud-agnostic record for a compute instance.
// Undetailed listings only fill ID, Name, Cloud and Region.
type Host struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	Cloud            string            `json:"cloud" yaml:"cloud"`
	Region           string            `json:"region,omitempty" yaml:"region,omitempty"`
	Status           string            `json:"status,omitempty" yaml:"status,omitempty"`
	AvailabilityZone string            `json:"az,omitempty" yaml:"az,omitempty"`
	Flavor           string            `json:"flavor,omitempty" yaml:"flavor,omitempty"`
	Image            string            `json:"image,omitempty" yaml:"image,omitempty"`
	ProjectID        string            `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	HostID           string            `json:"host_id,omitempty" yaml:"host_id,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Addresses        []Address         `json:"addresses,omitempty" yaml:"addresses,omitempty"`
	PublicV4         string            `json:"public_v4,omitempty" yaml:"public_v4,omitempty"`
	PrivateV4        string            `json:"private_v4,omitempty" yaml:"private_v4,omitempty"`
	PublicV6         string            `json:"public_v6,omitempty" yaml:"public_v6,omitempty"`
	InterfaceIP      string            `json:"interface_ip,omitempty" yaml:"interface_ip,omitempty"`
	Detailed         bool              `json:"detailed" yaml:"detailed"`
}

// Matches reports whether the host's ID or name is exactly nameOrID
func (h Host) Matches(nameOrID string) bool {
	return h.ID == nameOrID || h.Name == nameOrID
}

// SelectInterfaceIP picks the address Ansible should connect to.
// Private selection prefers the private IPv4, otherwise public v4 then v6.
func (h *Host) SelectInterfaceIP(private bool) {
	switch {
	case private && h.PrivateV4 != "":
		h.InterfaceIP = h.PrivateV4
	case h.PublicV4 != "":
		h.InterfaceIP = h.PublicV4
	case h.PublicV6 != "":
		h.InterfaceIP = h.PublicV6
	default:
		h.InterfaceIP = h.PrivateV4
	}
}
