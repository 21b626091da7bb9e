package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

// writeOutput prints v as indented JSON, or YAML when asYAML is set.
func writeOutput(w io.Writer, v any, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeHosts(c *cli.Context, hosts []models.Host) error {
	if hosts == nil {
		hosts = []models.Host{}
	}
	return writeOutput(c.App.Writer, hosts, c.Bool("yaml"))
}
