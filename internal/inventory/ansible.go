package inventory

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

// AnsibleGroup is one inventory group.
type AnsibleGroup struct {
	Hosts []string `json:"hosts" yaml:"hosts"`
}

// AnsibleInventory is the document printed for `--list`.
type AnsibleInventory struct {
	Groups   map[string]*AnsibleGroup
	HostVars map[string]HostVars
}

// HostVars are the variables of a single inventory host.
type HostVars struct {
	AnsibleSSHHost string      `json:"ansible_ssh_host" yaml:"ansible_ssh_host"`
	OpenStack      models.Host `json:"openstack" yaml:"openstack"`
}

type ansibleMeta struct {
	HostVars map[string]HostVars `json:"hostvars" yaml:"hostvars"`
}

// Document returns the inventory in the dynamic inventory layout, with
// groups at the top level next to _meta.
func (a *AnsibleInventory) Document() map[string]any {
	doc := make(map[string]any, len(a.Groups)+1)
	for name, g := range a.Groups {
		doc[name] = g
	}
	doc["_meta"] = ansibleMeta{HostVars: a.HostVars}
	return doc
}

// MarshalJSON renders Document.
func (a *AnsibleInventory) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Document())
}

// NewHostVars builds the variables of one host.
func NewHostVars(h models.Host, private bool) HostVars {
	ip := h.InterfaceIP
	if private && h.PrivateV4 != "" {
		ip = h.PrivateV4
	}
	return HostVars{AnsibleSSHHost: ip, OpenStack: h}
}

// BuildAnsible groups hosts the way the openstack dynamic inventory does.
// A host is keyed by name when that name is unique, else by id when the id is
// unique, else by cloud_region_id.
func BuildAnsible(hosts []models.Host, private bool) *AnsibleInventory {
	names := make(map[string]int, len(hosts))
	ids := make(map[string]int, len(hosts))
	for _, h := range hosts {
		names[h.Name]++
		ids[h.ID]++
	}

	inv := &AnsibleInventory{
		Groups:   map[string]*AnsibleGroup{},
		HostVars: map[string]HostVars{},
	}
	for _, h := range hosts {
		key := hostKey(h, names, ids)
		for _, group := range hostGroups(h) {
			g, ok := inv.Groups[group]
			if !ok {
				g = &AnsibleGroup{}
				inv.Groups[group] = g
			}
			g.Hosts = append(g.Hosts, key)
		}
		inv.HostVars[key] = NewHostVars(h, private)
	}
	return inv
}

func hostKey(h models.Host, names, ids map[string]int) string {
	switch {
	case h.Name != "" && names[h.Name] == 1:
		return h.Name
	case ids[h.ID] == 1:
		return h.ID
	}
	parts := []string{h.Cloud}
	if h.Region != "" {
		parts = append(parts, h.Region)
	}
	return strings.Join(append(parts, h.ID), "_")
}

func hostGroups(h models.Host) []string {
	var groups []string
	add := func(name string) {
		if name != "" {
			groups = append(groups, name)
		}
	}

	add(h.Metadata["group"])
	for _, g := range strings.Split(h.Metadata["groups"], ",") {
		add(strings.TrimSpace(g))
	}

	add(h.Cloud)
	add(h.Region)
	if h.Cloud != "" && h.Region != "" {
		add(h.Cloud + "_" + h.Region)
	}
	if h.AvailabilityZone != "" {
		add(h.AvailabilityZone)
		if h.Cloud != "" && h.Region != "" {
			add(h.Cloud + "_" + h.Region + "_" + h.AvailabilityZone)
		}
	}
	if h.Flavor != "" {
		add("flavor-" + h.Flavor)
	}
	if h.Image != "" {
		add("image-" + h.Image)
	}
	if h.ID != "" {
		add("instance-" + h.ID)
	}

	sort.Strings(groups)
	out := groups[:0]
	for i, g := range groups {
		if i == 0 || g != groups[i-1] {
			out = append(out, g)
		}
	}
	return out
}
