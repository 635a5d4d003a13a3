package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/orbital/internal/device"
	"github.com/samcharles93/orbital/internal/version"
)

type versionReport struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	Devices   string `json:"devices"`
}

func versionCmd() *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:  "version",
		Usage: "Print version and build information",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info := version.Resolve()
			r := versionReport{
				Version:   info.Version,
				Commit:    info.Commit,
				BuildTime: info.BuildTime,
				GoVersion: info.GoVersion,
				Modified:  info.Modified,
				Devices:   device.Available(),
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(r)
			}
			fmt.Printf("orbital %s\n", version.String())
			if r.BuildTime != "" {
				fmt.Printf("  built    %s\n", r.BuildTime)
			}
			if r.GoVersion != "" {
				fmt.Printf("  go       %s\n", r.GoVersion)
			}
			fmt.Printf("  devices  %s\n", r.Devices)
			return nil
		},
	}
}
