package main

import (
	"runtime"
	"testing"
)

func TestCPUFeaturesListedForKnownArch(t *testing.T) {
	t.Parallel()

	got := cpuFeatures()
	switch runtime.GOARCH {
	case "amd64", "arm64":
		if len(got) == 0 {
			t.Fatalf("no features reported for %s", runtime.GOARCH)
		}
	default:
		if got != nil {
			t.Fatalf("unexpected features for %s: %v", runtime.GOARCH, got)
		}
	}
}
