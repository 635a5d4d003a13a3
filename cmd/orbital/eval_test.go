package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const (
	waterPath  = "../../internal/system/testdata/water.yaml"
	h2Path     = "../../internal/system/testdata/h2.json"
	pointsPath = "../../internal/system/testdata/points.yaml"
)

func evalJSON(t *testing.T, opts evalOptions) []evalResult {
	t.Helper()
	opts.Format = "json"
	var buf bytes.Buffer
	if err := runEval(context.Background(), opts, &buf); err != nil {
		t.Fatalf("runEval: %v", err)
	}
	var out []evalResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode output %s: %v", buf.String(), err)
	}
	return out
}

func TestEvalShapes(t *testing.T) {
	t.Parallel()

	out := evalJSON(t, evalOptions{
		SystemPath: waterPath,
		Arrays:     []string{"ao_value,ao-vgl", "mo_value", "mo_vgl"},
		Device:     "host",
		Workers:    2,
	})
	want := map[string][]int{
		"ao_value": {3, 7},
		"ao_vgl":   {3, 5, 7},
		"mo_value": {3, 4},
		"mo_vgl":   {3, 5, 4},
	}
	if len(out) != len(want) {
		t.Fatalf("got %d arrays, want %d", len(out), len(want))
	}
	for _, r := range out {
		if diff := cmp.Diff(want[r.Kind], r.Shape); diff != "" {
			t.Fatalf("%s shape (-want +got):\n%s", r.Kind, diff)
		}
		n := 1
		for _, d := range r.Shape {
			n *= d
		}
		if len(r.Data) != n {
			t.Fatalf("%s: %d values for shape %v", r.Kind, len(r.Data), r.Shape)
		}
	}
}

func TestEvalDevicesAgree(t *testing.T) {
	t.Parallel()

	base := evalOptions{SystemPath: waterPath, Arrays: []string{"mo_vgl"}, Workers: 1}
	host := base
	host.Device = "host"
	emu := base
	emu.Device = "emulated"
	a := evalJSON(t, host)
	b := evalJSON(t, emu)
	if diff := cmp.Diff(a, b, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("host and emulated results differ (-host +emulated):\n%s", diff)
	}
}

func TestEvalRescaleAndSelect(t *testing.T) {
	t.Parallel()

	plain := evalJSON(t, evalOptions{SystemPath: h2Path, PointsPath: pointsPath, Arrays: []string{"mo_value"}, Device: "host"})
	got := evalJSON(t, evalOptions{
		SystemPath: h2Path,
		PointsPath: pointsPath,
		Arrays:     []string{"mo_value"},
		Rescale:    -0.5,
		HasRescale: true,
		Select:     "1",
		Device:     "host",
	})
	if diff := cmp.Diff([]int{2, 1}, got[0].Shape); diff != "" {
		t.Fatalf("shape (-want +got):\n%s", diff)
	}
	want := []float64{-0.5 * plain[0].Data[1], -0.5 * plain[0].Data[3]}
	if diff := cmp.Diff(want, got[0].Data, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
}

func TestEvalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts evalOptions
		want string
	}{
		{"bad format", evalOptions{SystemPath: waterPath, Format: "csv"}, "unknown output format"},
		{"bad kind", evalOptions{SystemPath: waterPath, Format: "table", Arrays: []string{"mo_hessian"}}, "unknown array kind"},
		{"missing points", evalOptions{SystemPath: h2Path, Format: "table", Arrays: []string{"ao_value"}, Device: "host"}, "point not provided"},
		{"zero rescale", evalOptions{SystemPath: waterPath, Format: "table", HasRescale: true, Device: "host"}, "scaling factor"},
		{"select out of range", evalOptions{SystemPath: waterPath, Format: "table", Select: "9", Device: "host"}, "out of range"},
		{"bad device", evalOptions{SystemPath: waterPath, Format: "table", Device: "tpu"}, "unknown device"},
	}
	for _, tc := range tests {
		err := runEval(context.Background(), tc.opts, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: got %v, want error containing %q", tc.name, err, tc.want)
		}
	}
}

func TestEvalTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := evalOptions{SystemPath: waterPath, Arrays: []string{"ao_vgl"}, Format: "table", Device: "host"}
	if err := runEval(context.Background(), opts, &buf); err != nil {
		t.Fatalf("runEval: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "ao_vgl [3 5 7]\n") {
		t.Fatalf("unexpected header: %q", out[:min(len(out), 40)])
	}
	if got := strings.Count(out, "lapl"); got != 3 {
		t.Fatalf("got %d laplacian rows, want 3", got)
	}
}

func TestParseSelection(t *testing.T) {
	t.Parallel()

	keep, err := parseSelection("0, 2,", 4)
	if err != nil {
		t.Fatalf("parseSelection: %v", err)
	}
	if diff := cmp.Diff([]bool{true, false, true, false}, keep); diff != "" {
		t.Fatalf("mask (-want +got):\n%s", diff)
	}
	if _, err := parseSelection("x", 4); err == nil {
		t.Fatal("expected error for non-numeric index")
	}
}
