package main

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sys/cpu"

	"github.com/samcharles93/orbital/internal/device"
)

func devicesCmd() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List memory devices and host CPU features",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, _, err := setup(ctx, cmd); err != nil {
				return err
			}
			fmt.Printf("Devices:\n\n")
			for _, name := range strings.Split(device.Available(), ",") {
				fmt.Printf("  %s\n", name)
			}
			dev, err := device.Open(device.Auto)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			fmt.Printf("\nauto resolves to %s\n", device.Describe(dev))

			fmt.Printf("\nHost: %s/%s, %d CPUs\n", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
			for _, f := range cpuFeatures() {
				fmt.Printf("  %-8s %v\n", f.name, f.ok)
			}
			return nil
		},
	}
}

type cpuFeature struct {
	name string
	ok   bool
}

func cpuFeatures() []cpuFeature {
	switch runtime.GOARCH {
	case "amd64":
		return []cpuFeature{
			{"AVX", cpu.X86.HasAVX},
			{"AVX2", cpu.X86.HasAVX2},
			{"FMA", cpu.X86.HasFMA},
			{"AVX512F", cpu.X86.HasAVX512F},
		}
	case "arm64":
		return []cpuFeature{
			{"ASIMD", cpu.ARM64.HasASIMD},
			{"FPHP", cpu.ARM64.HasFPHP},
			{"SVE", cpu.ARM64.HasSVE},
		}
	default:
		return nil
	}
}
