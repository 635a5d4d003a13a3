package device

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: Auto},
		{in: " Host ", want: Host},
		{in: "EMULATED", want: Emulated},
		{in: "cuda", want: CUDA},
		{in: "metal", wantErr: true},
	}
	for _, tc := range tests {
		got, err := Normalize(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Normalize(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("Normalize(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	d, err := Open("host")
	if err != nil || d != nil {
		t.Fatalf("Open(host) = %v, %v; want nil device", d, err)
	}
	d, err = Open("emulated")
	if err != nil {
		t.Fatalf("Open(emulated): %v", err)
	}
	if got := Describe(d); got != "emulated" {
		t.Fatalf("Describe = %q", got)
	}
	if _, err := Open("bogus"); err == nil {
		t.Fatal("expected error for unknown device")
	}
	if !Has(Host) || !Has(Emulated) {
		t.Fatalf("Available() = %q", Available())
	}
}
