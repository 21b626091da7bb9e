package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cloud-inventory",
		Usage: "List hosts across OpenStack and AWS clouds (Ansible dynamic inventory)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cloud",
				Usage:   "Only use the named cloud from clouds.yaml",
				EnvVars: []string{"OS_CLOUD"},
			},
			&cli.StringSliceFlag{
				Name:  "config-file",
				Usage: "clouds.yaml to read (repeatable, first existing wins)",
			},
			&cli.BoolFlag{
				Name:  "private",
				Usage: "Use private addresses for ansible_ssh_host",
			},
			&cli.BoolFlag{
				Name:  "yaml",
				Usage: "Print YAML instead of JSON",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging on stderr",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "Print the Ansible inventory",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Print the Ansible variables of one host",
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: `JavaScript expression over "host", e.g. 'host.status == "ACTIVE"'`,
			},
			&cli.BoolFlag{
				Name:  "no-expand",
				Usage: "Skip detailed server listing (ids and names only)",
			},
			&cli.Float64Flag{
				Name:  "api-rate-limit",
				Usage: "Maximum API requests per second per cloud (0 = unlimited)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List hosts from every configured cloud",
				Action: listCommand,
			},
			{
				Name:      "search",
				Usage:     "List hosts whose id or name matches exactly",
				ArgsUsage: "NAME_OR_ID",
				Action:    searchCommand,
			},
			{
				Name:      "host",
				Usage:     "Show the first host whose id or name matches",
				ArgsUsage: "NAME_OR_ID",
				Action:    hostCommand,
			},
			{
				Name:  "clouds",
				Usage: "Show configured clouds",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "supported",
						Usage: "Show supported cloud types instead",
					},
				},
				Action: cloudsCommand,
			},
			{
				Name:   "select",
				Usage:  "Choose a cloud interactively and list its hosts",
				Action: selectCommand,
			},
			{
				Name:  "publish",
				Usage: "Save a snapshot of the inventory to S3",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "bucket",
						Usage:    "S3 bucket",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "profile",
						Usage:   "AWS credential profile name",
						EnvVars: []string{"AWS_PROFILE"},
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Snapshot name",
						Value: "default",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Free-form note stored with the snapshot",
					},
				},
				Action: publishCommand,
			},
			{
				Name:  "snapshots",
				Usage: "List published snapshots, or show one with --name",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "bucket",
						Usage:    "S3 bucket",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "profile",
						Usage:   "AWS credential profile name",
						EnvVars: []string{"AWS_PROFILE"},
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Snapshot to show",
					},
					&cli.StringFlag{
						Name:  "version",
						Usage: "Version of --name to show (default current)",
					},
				},
				Action: snapshotsCommand,
			},
			{
				Name:   "validate",
				Usage:  "Check credentials of every configured cloud",
				Action: validateCommand,
			},
		},
		// Ansible calls the binary with --list or --host
		Action: inventoryAction,
	}
}
