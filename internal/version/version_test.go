package version

import (
	"strings"
	"testing"
)

func TestResolvePrefersLinkerValues(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	Version = "v1.2.3"
	Commit = "0123456789abcdef0123"
	info := Resolve()
	if info.Version != "v1.2.3" || info.Commit != Commit {
		t.Fatalf("unexpected info: %+v", info)
	}
	if s := String(); !strings.HasPrefix(s, "v1.2.3 (0123456789ab") {
		t.Fatalf("String() = %q", s)
	}
}

func TestResolveHasVersion(t *testing.T) {
	if Resolve().Version == "" {
		t.Fatal("empty version")
	}
}
