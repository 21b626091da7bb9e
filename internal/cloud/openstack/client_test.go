package openstack

import (
	"context"
	"errors"
	"testing"

	"github.com/go-goose/goose/v5/identity"
	"github.com/go-goose/goose/v5/nova"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

type fakeAuth struct {
	authenticated bool
	calls         int
	err           error
}

func (a *fakeAuth) Authenticate() error {
	a.calls++
	if a.err != nil {
		return a.err
	}
	a.authenticated = true
	return nil
}

func (a *fakeAuth) IsAuthenticated() bool { return a.authenticated }

type fakeCompute struct {
	entities    []nova.Entity
	details     []nova.ServerDetail
	err         error
	listCalls   int
	detailCalls int
}

func (f *fakeCompute) ListServers(*nova.Filter) ([]nova.Entity, error) {
	f.listCalls++
	return f.entities, f.err
}

func (f *fakeCompute) ListServersDetail(*nova.Filter) ([]nova.ServerDetail, error) {
	f.detailCalls++
	return f.details, f.err
}

func testConfig() models.CloudConfig {
	return models.CloudConfig{
		Name:   "mycloud",
		Region: "RegionOne",
		Type:   models.CloudTypeOpenStack,
		Auth: models.AuthConfig{
			AuthURL:     "https://keystone.example.com:5000/v2.0",
			Username:    "demo",
			Password:    "secret",
			ProjectName: "demo",
		},
	}
}

func newTestClient(t *testing.T, auth *fakeAuth, compute *fakeCompute, opts ...Option) (*Client, *int) {
	t.Helper()
	sessions := 0
	opts = append(opts, withSession(func(models.CloudConfig) (authenticator, computeAPI, error) {
		sessions++
		return auth, compute, nil
	}))
	c, err := NewClient(testConfig(), opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, &sessions
}

func TestNewClientIsLazy(t *testing.T) {
	_, sessions := newTestClient(t, &fakeAuth{}, &fakeCompute{})
	if *sessions != 0 {
		t.Fatalf("expected no session on construction, got %d", *sessions)
	}
}

func TestNewClientRequiresAuthURL(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.AuthURL = ""
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error without auth_url")
	}
}

func TestListServersUndetailed(t *testing.T) {
	auth := &fakeAuth{}
	compute := &fakeCompute{entities: []nova.Entity{{Id: "1234", Name: "test"}, {Id: "5678", Name: "other"}}}
	c, sessions := newTestClient(t, auth, compute)

	hosts, err := c.ListServers(context.Background(), false)
	if err != nil {
		t.Fatalf("ListServers: %v", err)
	}
	if compute.listCalls != 1 || compute.detailCalls != 0 {
		t.Errorf("expected one undetailed call, got list=%d detail=%d", compute.listCalls, compute.detailCalls)
	}
	if len(hosts) != 2 || hosts[0].ID != "1234" || hosts[1].Name != "other" {
		t.Fatalf("unexpected hosts: %+v", hosts)
	}
	if hosts[0].Cloud != "mycloud" || hosts[0].Region != "RegionOne" || hosts[0].Detailed {
		t.Errorf("unexpected host fields: %+v", hosts[0])
	}

	if _, err := c.ListServers(context.Background(), false); err != nil {
		t.Fatalf("second ListServers: %v", err)
	}
	if *sessions != 1 || auth.calls != 1 {
		t.Errorf("expected one session and one authentication, got %d and %d", *sessions, auth.calls)
	}
}

func TestListServersDetailed(t *testing.T) {
	compute := &fakeCompute{details: []nova.ServerDetail{{
		Id:               "1234",
		Name:             "test",
		Status:           nova.StatusActive,
		AvailabilityZone: "nova",
		Flavor:           nova.Entity{Id: "f1", Name: "m1.small"},
		Image:            nova.Entity{Id: "img-1"},
		TenantId:         "tenant",
		Metadata:         map[string]string{"group": "web"},
		Addresses: map[string][]nova.IPAddress{
			"private": {
				{Version: 4, Address: "10.0.0.5", Type: "fixed"},
				{Version: 4, Address: "172.24.4.10", Type: "floating"},
				{Version: 6, Address: "2001:db8::5", Type: "fixed"},
			},
		},
	}}}
	c, _ := newTestClient(t, &fakeAuth{}, compute)

	hosts, err := c.ListServers(context.Background(), true)
	if err != nil {
		t.Fatalf("ListServers: %v", err)
	}
	if compute.detailCalls != 1 || compute.listCalls != 0 {
		t.Errorf("expected one detailed call, got list=%d detail=%d", compute.listCalls, compute.detailCalls)
	}
	h := hosts[0]
	if !h.Detailed || h.Status != "ACTIVE" || h.Flavor != "m1.small" || h.Image != "img-1" {
		t.Errorf("unexpected detail fields: %+v", h)
	}
	if h.PublicV4 != "172.24.4.10" || h.PrivateV4 != "10.0.0.5" || h.PublicV6 != "2001:db8::5" {
		t.Errorf("unexpected addresses: %+v", h)
	}
	if h.InterfaceIP != "172.24.4.10" {
		t.Errorf("expected public interface ip, got %q", h.InterfaceIP)
	}
	if h.Metadata["group"] != "web" || len(h.Addresses) != 3 {
		t.Errorf("unexpected metadata/addresses: %+v", h)
	}
}

func TestListServersPrivate(t *testing.T) {
	compute := &fakeCompute{details: []nova.ServerDetail{{
		Id: "1", Name: "a",
		Addresses: map[string][]nova.IPAddress{
			"public":  {{Version: 4, Address: "203.0.113.7"}},
			"private": {{Version: 4, Address: "10.1.1.1"}},
		},
	}}}
	c, _ := newTestClient(t, &fakeAuth{}, compute, WithPrivate(true))

	hosts, err := c.ListServers(context.Background(), true)
	if err != nil {
		t.Fatalf("ListServers: %v", err)
	}
	if hosts[0].PublicV4 != "203.0.113.7" || hosts[0].InterfaceIP != "10.1.1.1" {
		t.Errorf("unexpected host: %+v", hosts[0])
	}
}

func TestListServersErrors(t *testing.T) {
	boom := errors.New("boom")

	c, _ := newTestClient(t, &fakeAuth{}, &fakeCompute{err: boom})
	_, err := c.ListServers(context.Background(), true)
	var pe *models.ProviderError
	if !errors.As(err, &pe) || pe.Operation != "list-servers-detail" || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped list error, got %v", err)
	}

	c, _ = newTestClient(t, &fakeAuth{err: boom}, &fakeCompute{})
	_, err = c.ListServers(context.Background(), false)
	if !errors.As(err, &pe) || pe.Operation != "authenticate" || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped auth error, got %v", err)
	}
}

func TestNewCredentials(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.CloudConfig)
		mode    identity.AuthMode
		wantErr bool
	}{
		{"v2 userpass", func(*models.CloudConfig) {}, identity.AuthUserPass, false},
		{"domain implies v3", func(c *models.CloudConfig) { c.Auth.UserDomainName = "Default" }, identity.AuthUserPassV3, false},
		{"explicit v3", func(c *models.CloudConfig) { c.IdentityVersion = 3 }, identity.AuthUserPassV3, false},
		{"explicit v2 wins over domain", func(c *models.CloudConfig) {
			c.IdentityVersion = 2
			c.Auth.DomainName = "Default"
		}, identity.AuthUserPass, false},
		{"key pair", func(c *models.CloudConfig) {
			c.Auth.AccessKey = "ak"
			c.Auth.SecretKey = "sk"
		}, identity.AuthKeyPair, false},
		{"key pair without secret", func(c *models.CloudConfig) { c.Auth.AccessKey = "ak" }, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			cred, mode, err := newCredentials(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newCredentials: %v", err)
			}
			if mode != tt.mode {
				t.Errorf("got mode %v, want %v", mode, tt.mode)
			}
			if cred.URL != cfg.Auth.AuthURL || cred.Region != "RegionOne" {
				t.Errorf("unexpected credentials: %+v", cred)
			}
		})
	}
}

func TestWithRateLimit(t *testing.T) {
	c, _ := newTestClient(t, &fakeAuth{}, &fakeCompute{})
	if c.limiter != nil {
		t.Fatal("expected no limiter without a rate")
	}
	c, _ = newTestClient(t, &fakeAuth{}, &fakeCompute{}, WithRateLimit(2))
	if c.limiter == nil {
		t.Fatal("expected a limiter")
	}
}
