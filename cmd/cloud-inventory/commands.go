package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/juju/loggo/v2"
	"github.com/urfave/cli/v2"

	"github.com/hemantobora/cloud-inventory/internal/cloud"
	"github.com/hemantobora/cloud-inventory/internal/config"
	"github.com/hemantobora/cloud-inventory/internal/filter"
	"github.com/hemantobora/cloud-inventory/internal/inventory"
	"github.com/hemantobora/cloud-inventory/internal/models"
	"github.com/hemantobora/cloud-inventory/internal/progress"
	"github.com/hemantobora/cloud-inventory/internal/state"
)

var logger = loggo.GetLogger("cloudinventory.cmd")

// newInventory builds the aggregator from the global flags.
// Tests replace it.
var newInventory = func(c *cli.Context, extra ...inventory.Option) (*inventory.Inventory, error) {
	factory := cloud.NewFactory(
		cloud.WithPrivate(c.Bool("private")),
		cloud.WithRateLimit(c.Float64("api-rate-limit")),
	)
	opts := []inventory.Option{
		inventory.WithConfigFiles(configFiles(c)...),
		inventory.WithFactory(factory),
	}
	if name := c.String("cloud"); name != "" {
		opts = append(opts, inventory.WithCloud(name))
	}
	return inventory.New(c.Context, append(opts, extra...)...)
}

// newStore opens the snapshot store. Tests replace it.
var newStore = func(ctx context.Context, bucket, profile string) (state.Store, error) {
	return state.StoreWithProfile(ctx, bucket, profile)
}

// askCloud prompts for one of names. Tests replace it.
var askCloud = func(names []string) (string, error) {
	var choice string
	err := survey.AskOne(&survey.Select{
		Message: "Select a cloud:",
		Options: names,
	}, &choice, survey.WithValidator(survey.Required))
	return choice, err
}

func loggingConfig(debug bool) string {
	if debug {
		return "<root>=DEBUG"
	}
	return "<root>=WARNING"
}

func setup(c *cli.Context) error {
	if err := loggo.ConfigureLoggers(loggingConfig(c.Bool("debug"))); err != nil {
		return err
	}
	if err := config.LoadDotEnv("."); err != nil {
		logger.Warningf("ignoring .env: %v", err)
	}
	return nil
}

func configFiles(c *cli.Context) []string {
	files := c.StringSlice("config-file")
	if len(files) == 0 {
		return config.DefaultConfigFiles()
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, config.ExpandPath(f))
	}
	return out
}

// collectHosts lists hosts honouring --no-expand and --filter.
func collectHosts(c *cli.Context, inv *inventory.Inventory) ([]models.Host, error) {
	f, err := filter.Compile(c.String("filter"))
	if err != nil {
		return nil, err
	}
	spinner := progress.New(os.Stderr, fmt.Sprintf("Listing hosts in %d clouds...", len(inv.Clouds())))
	spinner.Start()
	hosts, err := inv.ListHosts(c.Context, !c.Bool("no-expand"))
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	return f.Apply(hosts)
}

func inventoryAction(c *cli.Context) error {
	switch {
	case c.Bool("list"):
		inv, err := newInventory(c)
		if err != nil {
			return err
		}
		hosts, err := collectHosts(c, inv)
		if err != nil {
			return err
		}
		return writeOutput(c.App.Writer, inventory.BuildAnsible(hosts, c.Bool("private")).Document(), c.Bool("yaml"))
	case c.IsSet("host"):
		inv, err := newInventory(c)
		if err != nil {
			return err
		}
		host, err := inv.GetHost(c.Context, c.String("host"), !c.Bool("no-expand"))
		if err != nil {
			return err
		}
		if host == nil {
			return writeOutput(c.App.Writer, map[string]any{}, c.Bool("yaml"))
		}
		return writeOutput(c.App.Writer, inventory.NewHostVars(*host, c.Bool("private")), c.Bool("yaml"))
	default:
		return cli.ShowAppHelp(c)
	}
}

func listCommand(c *cli.Context) error {
	inv, err := newInventory(c)
	if err != nil {
		return err
	}
	hosts, err := collectHosts(c, inv)
	if err != nil {
		return err
	}
	return writeHosts(c, hosts)
}

func searchCommand(c *cli.Context) error {
	nameOrID, err := singleArg(c)
	if err != nil {
		return err
	}
	inv, err := newInventory(c)
	if err != nil {
		return err
	}
	hosts, err := inv.SearchHosts(c.Context, nameOrID, !c.Bool("no-expand"))
	if err != nil {
		return err
	}
	return writeHosts(c, hosts)
}

func hostCommand(c *cli.Context) error {
	nameOrID, err := singleArg(c)
	if err != nil {
		return err
	}
	inv, err := newInventory(c)
	if err != nil {
		return err
	}
	host, err := inv.GetHost(c.Context, nameOrID, !c.Bool("no-expand"))
	if err != nil {
		return err
	}
	if host == nil {
		return fmt.Errorf("host %q not found", nameOrID)
	}
	return writeOutput(c.App.Writer, host, c.Bool("yaml"))
}

func cloudsCommand(c *cli.Context) error {
	if c.Bool("supported") {
		return writeOutput(c.App.Writer, cloud.GetSupportedProviders(), c.Bool("yaml"))
	}
	configs, err := config.NewLoader(configFiles(c)).GetAllCloudConfigs()
	if err != nil {
		return err
	}
	summaries := make([]models.CloudSummary, 0, len(configs))
	for _, cfg := range configs {
		if !cloud.IsSupported(cfg.CloudType()) {
			fmt.Fprintf(os.Stderr, "⚠️  %s: unsupported cloud type %q\n", cfg, cfg.Type)
		}
		summaries = append(summaries, models.CloudSummary{Name: cfg.Name, Region: cfg.Region, Type: cfg.CloudType()})
	}
	return writeOutput(c.App.Writer, summaries, c.Bool("yaml"))
}

func selectCommand(c *cli.Context) error {
	names, err := config.NewLoader(configFiles(c)).CloudNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no clouds configured")
	}
	choice, err := askCloud(names)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "🔍 Listing hosts in %s...\n", choice)

	inv, err := newInventory(c, inventory.WithCloud(choice))
	if err != nil {
		return err
	}
	hosts, err := collectHosts(c, inv)
	if err != nil {
		return err
	}
	return writeHosts(c, hosts)
}

func publishCommand(c *cli.Context) error {
	name := c.String("name")
	if err := state.ValidateName(name); err != nil {
		return err
	}
	inv, err := newInventory(c)
	if err != nil {
		return err
	}
	hosts, err := collectHosts(c, inv)
	if err != nil {
		return err
	}
	store, err := newStore(c.Context, c.String("bucket"), c.String("profile"))
	if err != nil {
		return err
	}

	snap := state.NewSnapshot(name, hosts)
	snap.Metadata.Description = c.String("description")
	if err := store.SaveSnapshot(c.Context, name, snap); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✅ Published %d hosts from %d clouds to s3://%s/snapshots/%s (version %s)\n",
		snap.Metadata.HostCount, len(snap.Metadata.Clouds), c.String("bucket"), name, snap.Metadata.Version)
	return nil
}

func snapshotsCommand(c *cli.Context) error {
	store, err := newStore(c.Context, c.String("bucket"), c.String("profile"))
	if err != nil {
		return err
	}
	name := c.String("name")
	if name == "" {
		list, err := store.ListSnapshots(c.Context)
		if err != nil {
			return err
		}
		return writeOutput(c.App.Writer, list, c.Bool("yaml"))
	}

	var snap *state.Snapshot
	if version := c.String("version"); version != "" {
		snap, err = store.GetSnapshotVersion(c.Context, name, version)
	} else {
		snap, err = store.GetSnapshot(c.Context, name)
	}
	if err != nil {
		return err
	}
	return writeOutput(c.App.Writer, snap, c.Bool("yaml"))
}

func validateCommand(c *cli.Context) error {
	inv, err := newInventory(c)
	if err != nil {
		return err
	}
	var failed []string
	for _, client := range inv.Clouds() {
		label := client.Name()
		if r := client.Region(); r != "" {
			label += "/" + r
		}
		v, ok := client.(cloud.Validator)
		if !ok {
			fmt.Fprintf(os.Stderr, "➖ %s: no credential check available\n", label)
			continue
		}
		if err := v.Validate(c.Context); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %s: %v\n", label, err)
			failed = append(failed, label)
			continue
		}
		fmt.Fprintf(os.Stderr, "✅ %s\n", label)
	}
	if len(failed) > 0 {
		return fmt.Errorf("credential check failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

func singleArg(c *cli.Context) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one NAME_OR_ID argument, got %d", c.Args().Len())
	}
	return c.Args().First(), nil
}
