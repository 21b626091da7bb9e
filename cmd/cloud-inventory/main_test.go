package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/hemantobora/cloud-inventory/internal/cloud"
	"github.com/hemantobora/cloud-inventory/internal/inventory"
	"github.com/hemantobora/cloud-inventory/internal/models"
	"github.com/hemantobora/cloud-inventory/internal/state"
)

type stubLoader struct{ configs []models.CloudConfig }

func (l stubLoader) GetAllCloudConfigs() ([]models.CloudConfig, error) { return l.configs, nil }

func (l stubLoader) GetOneCloudConfig(name string) (models.CloudConfig, error) {
	for _, c := range l.configs {
		if c.Name == name {
			return c, nil
		}
	}
	return models.CloudConfig{}, errors.New("not found")
}

type stubClient struct {
	cfg         models.CloudConfig
	hosts       []models.Host
	validateErr error
}

func (c stubClient) Name() string   { return c.cfg.Name }
func (c stubClient) Region() string { return c.cfg.Region }

func (c stubClient) ListServers(context.Context, bool) ([]models.Host, error) {
	return c.hosts, nil
}

func (c stubClient) Validate(context.Context) error { return c.validateErr }

type stubFactory map[string]stubClient

func (f stubFactory) NewClient(cfg models.CloudConfig) (cloud.Client, error) {
	c := f[cfg.Name]
	c.cfg = cfg
	return c, nil
}

type memStore struct {
	saved map[string]*state.Snapshot
}

func (m *memStore) SaveSnapshot(_ context.Context, name string, snap *state.Snapshot) error {
	snap.Metadata.Version = "v1"
	m.saved[name] = snap
	return nil
}

func (m *memStore) GetSnapshot(_ context.Context, name string) (*state.Snapshot, error) {
	if s, ok := m.saved[name]; ok {
		return s, nil
	}
	return nil, state.ErrSnapshotNotFound
}

func (m *memStore) GetSnapshotVersion(ctx context.Context, name, _ string) (*state.Snapshot, error) {
	return m.GetSnapshot(ctx, name)
}

func (m *memStore) ListSnapshots(context.Context) ([]state.SnapshotMetadata, error) {
	var out []state.SnapshotMetadata
	for _, s := range m.saved {
		out = append(out, s.Metadata)
	}
	return out, nil
}

func stubEnvironment(t *testing.T) *memStore {
	t.Helper()
	loader := stubLoader{configs: []models.CloudConfig{
		{Name: "prod", Region: "RegionOne"},
		{Name: "dev", Region: "RegionOne"},
	}}
	factory := stubFactory{
		"prod": {hosts: []models.Host{
			{ID: "1", Name: "web", Cloud: "prod", Region: "RegionOne", Status: "ACTIVE", PublicV4: "203.0.113.1", PrivateV4: "10.0.0.1", InterfaceIP: "203.0.113.1"},
			{ID: "2", Name: "db", Cloud: "prod", Region: "RegionOne", Status: "SHUTOFF", PrivateV4: "10.0.0.2", InterfaceIP: "10.0.0.2"},
		}},
		"dev": {
			hosts:       []models.Host{{ID: "3", Name: "web-dev", Cloud: "dev", Region: "RegionOne", Status: "ACTIVE"}},
			validateErr: errors.New("bad password"),
		},
	}
	store := &memStore{saved: map[string]*state.Snapshot{}}

	origInventory, origStore, origAsk := newInventory, newStore, askCloud
	t.Cleanup(func() { newInventory, newStore, askCloud = origInventory, origStore, origAsk })

	newInventory = func(c *cli.Context, extra ...inventory.Option) (*inventory.Inventory, error) {
		opts := []inventory.Option{
			inventory.WithLoader(func([]string) inventory.Loader { return loader }),
			inventory.WithFactory(factory),
			inventory.WithConfigFiles("clouds.yaml"),
		}
		if name := c.String("cloud"); name != "" {
			opts = append(opts, inventory.WithCloud(name))
		}
		return inventory.New(c.Context, append(opts, extra...)...)
	}
	newStore = func(context.Context, string, string) (state.Store, error) { return store, nil }
	askCloud = func(names []string) (string, error) { return "dev", nil }
	return store
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"cloud-inventory"}, args...))
	return out.String(), err
}

func TestAnsibleList(t *testing.T) {
	stubEnvironment(t)
	out, err := run(t, "--list")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	for _, key := range []string{"_meta", "prod", "dev", "prod_RegionOne", "instance-3"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing %s in %s", key, out)
		}
	}
}

func TestAnsibleListFilteredYAML(t *testing.T) {
	stubEnvironment(t)
	out, err := run(t, "--yaml", "--filter", `host.status == "ACTIVE"`, "--list")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if _, ok := doc["instance-2"]; ok {
		t.Error("filtered host must not be grouped")
	}
	if _, ok := doc["instance-1"]; !ok {
		t.Errorf("expected instance-1 in %s", out)
	}
}

func TestAnsibleHost(t *testing.T) {
	stubEnvironment(t)
	out, err := run(t, "--private", "--host", "web")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var vars inventory.HostVars
	if err := json.Unmarshal([]byte(out), &vars); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if vars.AnsibleSSHHost != "10.0.0.1" || vars.OpenStack.ID != "1" {
		t.Errorf("unexpected hostvars: %+v", vars)
	}

	out, err = run(t, "--host", "missing")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "{}" {
		t.Errorf("expected {} for absent host, got %q", out)
	}
}

func TestSearchAndHostCommands(t *testing.T) {
	stubEnvironment(t)

	out, err := run(t, "search", "db")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var hosts []models.Host
	if err := json.Unmarshal([]byte(out), &hosts); err != nil || len(hosts) != 1 || hosts[0].ID != "2" {
		t.Errorf("unexpected search output %q: %v", out, err)
	}

	if _, err := run(t, "host", "nope"); err == nil {
		t.Error("expected error for absent host")
	}
	if _, err := run(t, "search"); err == nil {
		t.Error("expected error without argument")
	}
}

func TestListOneCloud(t *testing.T) {
	stubEnvironment(t)
	out, err := run(t, "--cloud", "dev", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var hosts []models.Host
	if err := json.Unmarshal([]byte(out), &hosts); err != nil || len(hosts) != 1 || hosts[0].Cloud != "dev" {
		t.Errorf("unexpected output %q: %v", out, err)
	}
}

func TestPublishAndSnapshots(t *testing.T) {
	store := stubEnvironment(t)
	if _, err := run(t, "publish", "--bucket", "b", "--name", "nightly"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	snap, ok := store.saved["nightly"]
	if !ok || snap.Metadata.HostCount != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	out, err := run(t, "snapshots", "--bucket", "b", "--name", "nightly")
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if !strings.Contains(out, `"host_count": 3`) {
		t.Errorf("unexpected snapshot output %q", out)
	}

	if _, err := run(t, "publish", "--bucket", "b", "--name", "bad/name"); err == nil {
		t.Error("expected invalid name error")
	}
}

func TestValidateReportsFailures(t *testing.T) {
	stubEnvironment(t)
	_, err := run(t, "validate")
	if err == nil || !strings.Contains(err.Error(), "dev/RegionOne") {
		t.Fatalf("expected dev failure, got %v", err)
	}
}

func TestLoggingConfig(t *testing.T) {
	if got := loggingConfig(true); got != "<root>=DEBUG" {
		t.Errorf("got %q", got)
	}
	if got := loggingConfig(false); got != "<root>=WARNING" {
		t.Errorf("got %q", got)
	}
}

func TestSelectCommand(t *testing.T) {
	stubEnvironment(t)
	dir := t.TempDir()
	clouds := dir + "/clouds.yaml"
	content := "clouds:\n  dev:\n    auth:\n      auth_url: https://dev.example.com:5000/v3\n"
	if err := os.WriteFile(clouds, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OS_AUTH_URL", "")

	out, err := run(t, "--config-file", clouds, "select")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var hosts []models.Host
	if err := json.Unmarshal([]byte(out), &hosts); err != nil || len(hosts) != 1 || hosts[0].Name != "web-dev" {
		t.Errorf("unexpected output %q: %v", out, err)
	}
}
