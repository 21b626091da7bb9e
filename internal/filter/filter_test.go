package filter

import (
	"errors"
	"testing"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

func testHosts() []models.Host {
	return []models.Host{
		{ID: "1", Name: "web-1", Cloud: "prod", Status: "ACTIVE", Metadata: map[string]string{"group": "web"}},
		{ID: "2", Name: "db-1", Cloud: "prod", Status: "SHUTOFF"},
		{ID: "3", Name: "web-2", Cloud: "dev", Status: "ACTIVE", Metadata: map[string]string{"group": "web"}},
	}
}

func TestEmptyExpressionMatchesAll(t *testing.T) {
	f, err := Compile("  ")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	hosts, err := f.Apply(testHosts())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(hosts) != 3 {
		t.Errorf("expected all hosts, got %d", len(hosts))
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{`host.status == "ACTIVE"`, []string{"1", "3"}},
		{`host.cloud === "prod" && host.status !== "ACTIVE"`, []string{"2"}},
		{`(host.metadata || {}).group == "web"`, []string{"1", "3"}},
		{`host.name.startsWith("web")`, []string{"1", "3"}},
		{`/^db-/.test(host.name)`, []string{"2"}},
		{`false`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			hosts, err := f.Apply(testHosts())
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			var got []string
			for _, h := range hosts {
				got = append(got, h.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCompileError(t *testing.T) {
	_, err := Compile(`host.status ==`)
	var fe *models.FilterError
	if !errors.As(err, &fe) || fe.Host != "" {
		t.Fatalf("expected compile FilterError, got %v", err)
	}
}

func TestMatchErrors(t *testing.T) {
	tests := []string{
		`host.status`,
		`host.missing.field == 1`,
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			f, err := Compile(expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			_, err = f.Match(testHosts()[1])
			var fe *models.FilterError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FilterError, got %v", err)
			}
			if fe.Host != "db-1" {
				t.Errorf("expected host name in error, got %q", fe.Host)
			}
		})
	}
}
