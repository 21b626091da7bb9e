package models

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigurationErrorUnwrap(t *testing.T) {
	cause := &LoaderError{Cloud: "supercloud", Cause: errors.New("not found")}
	err := error(&ConfigurationError{Cloud: "supercloud", Cause: cause})

	var le *LoaderError
	if !errors.As(err, &le) {
		t.Fatal("expected ConfigurationError to unwrap to LoaderError")
	}
	if le.Cloud != "supercloud" {
		t.Errorf("expected cloud supercloud, got %q", le.Cloud)
	}
	if !strings.Contains(err.Error(), "'supercloud'") {
		t.Errorf("expected cloud name in message, got %q", err.Error())
	}
}

func TestLoaderErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *LoaderError
		want string
	}{
		{"cloud only", &LoaderError{Cloud: "a", Cause: errors.New("x")}, "loading cloud 'a': x"},
		{"path only", &LoaderError{Path: "/c.yaml", Cause: errors.New("x")}, "loading '/c.yaml': x"},
		{"both", &LoaderError{Cloud: "a", Path: "/c.yaml", Cause: errors.New("x")}, "loading cloud 'a' from '/c.yaml': x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectInterfaceIP(t *testing.T) {
	tests := []struct {
		name    string
		host    Host
		private bool
		want    string
	}{
		{"public preferred", Host{PublicV4: "1.2.3.4", PrivateV4: "10.0.0.1"}, false, "1.2.3.4"},
		{"private requested", Host{PublicV4: "1.2.3.4", PrivateV4: "10.0.0.1"}, true, "10.0.0.1"},
		{"private missing", Host{PublicV4: "1.2.3.4"}, true, "1.2.3.4"},
		{"v6 fallback", Host{PublicV6: "2001:db8::1"}, false, "2001:db8::1"},
		{"private only", Host{PrivateV4: "10.0.0.1"}, false, "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.host
			h.SelectInterfaceIP(tt.private)
			if h.InterfaceIP != tt.want {
				t.Errorf("got %q, want %q", h.InterfaceIP, tt.want)
			}
		})
	}
}

func TestHostMatches(t *testing.T) {
	h := Host{ID: "server_id", Name: "server_name"}
	if !h.Matches("server_id") || !h.Matches("server_name") {
		t.Error("expected id and name to match")
	}
	if h.Matches("SERVER_ID") {
		t.Error("match must be case sensitive")
	}
}
