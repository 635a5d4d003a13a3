package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/orbital/internal/device"
	"github.com/samcharles93/orbital/internal/logger"
	"github.com/samcharles93/orbital/internal/system"
	"github.com/samcharles93/orbital/pkg/orbital"
)

type evalOptions struct {
	SystemPath string
	PointsPath string
	Arrays     []string
	Rescale    float64
	HasRescale bool
	Select     string
	Format     string
	Device     string
	Workers    int
}

type evalResult struct {
	Kind  string    `json:"kind"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

func evalCmd() *cli.Command {
	var (
		opts   evalOptions
		arrays []string
	)

	return &cli.Command{
		Name:  "eval",
		Usage: "Evaluate orbital arrays for a system document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "system",
				Aliases:     []string{"s"},
				Usage:       "system document (.yaml or .json)",
				Required:    true,
				Destination: &opts.SystemPath,
			},
			&cli.StringFlag{
				Name:        "points",
				Aliases:     []string{"p"},
				Usage:       "points document replacing the system's points",
				Destination: &opts.PointsPath,
			},
			&cli.StringSliceFlag{
				Name:        "array",
				Aliases:     []string{"a"},
				Usage:       "array to print (ao_value, ao_vgl, mo_value, mo_vgl); repeatable",
				Value:       []string{"mo_value"},
				Destination: &arrays,
			},
			&cli.Float64Flag{
				Name:        "rescale",
				Usage:       "multiply MO coefficients by this factor before evaluating",
				Destination: &opts.Rescale,
			},
			&cli.StringFlag{
				Name:        "select",
				Usage:       "comma-separated MO indices to keep before evaluating",
				Destination: &opts.Select,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format (table, json)",
				Value:       "table",
				Destination: &opts.Format,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			applyEvalConfig(cmd, cfg, &opts.Format)
			opts.Arrays = arrays
			opts.HasRescale = cmd.IsSet("rescale")
			opts.Device = deviceName
			opts.Workers = int(workers)
			if err := runEval(ctx, opts, os.Stdout); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

func runEval(ctx context.Context, opts evalOptions, w io.Writer) error {
	log := logger.FromContext(ctx)
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown output format %q (expected table or json)", opts.Format)
	}
	kinds := make([]orbital.Kind, 0, len(opts.Arrays))
	for _, a := range opts.Arrays {
		for _, name := range strings.Split(a, ",") {
			k, err := orbital.ParseKind(name)
			if err != nil {
				return err
			}
			kinds = append(kinds, k)
		}
	}

	doc, err := system.Load(opts.SystemPath)
	if err != nil {
		return err
	}
	dev, err := device.Open(opts.Device)
	if err != nil {
		return err
	}
	c := orbital.New(dev, orbital.WithLogger(logger.Slog(log)), orbital.WithWorkers(opts.Workers))
	defer func() {
		if err := c.Destroy(); err != nil {
			log.Warn("destroy context", "error", err)
		}
	}()
	log.Debug("context created", "id", c.ID().String(), "device", device.Describe(dev))

	if err := doc.Apply(c); err != nil {
		return err
	}
	if opts.PointsPath != "" {
		pts, err := system.LoadPoints(opts.PointsPath)
		if err != nil {
			return err
		}
		if err := c.SetPoints(orbital.Normal, pts); err != nil {
			return err
		}
	}
	if opts.HasRescale {
		if err := c.RescaleMO(opts.Rescale); err != nil {
			return err
		}
	}
	if opts.Select != "" {
		moNum, err := c.GetMONum()
		if err != nil {
			return err
		}
		keep, err := parseSelection(opts.Select, int(moNum))
		if err != nil {
			return err
		}
		if err := c.SelectMO(keep); err != nil {
			return err
		}
	}

	results := make([]evalResult, 0, len(kinds))
	for _, k := range kinds {
		dims, err := c.Shape(k)
		if err != nil {
			return err
		}
		n, _ := c.Len(k)
		data := make([]float64, n)
		start := time.Now()
		if err := c.GetHost(k, data); err != nil {
			return err
		}
		log.Info("evaluated", "kind", k.String(), "shape", dims, "elapsed", time.Since(start))
		results = append(results, evalResult{Kind: k.String(), Shape: dims, Data: data})
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		writeTable(w, r)
	}
	return nil
}

// parseSelection turns "0,2,3" into a keep mask over n orbitals.
func parseSelection(s string, n int) ([]bool, error) {
	keep := make([]bool, n)
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		i, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("select: %q is not an orbital index", f)
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("select: index %d out of range [0, %d)", i, n)
		}
		keep[i] = true
	}
	return keep, nil
}

var slotNames = [...]string{"value", "d/dx", "d/dy", "d/dz", "lapl"}

// writeTable prints one row per point (and slot, for VGL arrays).
func writeTable(w io.Writer, r evalResult) {
	_, _ = fmt.Fprintf(w, "%s %v\n", r.Kind, r.Shape)
	points, cols := r.Shape[0], r.Shape[len(r.Shape)-1]
	slots := 1
	if len(r.Shape) == 3 {
		slots = r.Shape[1]
	}
	for p := range points {
		for s := range slots {
			label := fmt.Sprintf("%4d", p)
			if slots > 1 {
				label += fmt.Sprintf(" %-6s", slotNames[s])
			}
			row := r.Data[(p*slots+s)*cols : (p*slots+s+1)*cols]
			var b strings.Builder
			for _, v := range row {
				fmt.Fprintf(&b, " %13.6e", v)
			}
			_, _ = fmt.Fprintf(w, "  %s%s\n", label, b.String())
		}
	}
	_, _ = fmt.Fprintln(w)
}
