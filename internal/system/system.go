// Package system reads molecular system descriptions (geometry, AO basis,
// MO coefficients and sample points) from YAML or JSON and loads them into an
// orbital.Context.
package system

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/orbital/pkg/kernel"
	"github.com/samcharles93/orbital/pkg/orbital"
)

type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

var ErrInvalid = errors.New("invalid system document")

type Electron struct {
	Up int64 `yaml:"up" json:"up"`
	Dn int64 `yaml:"dn" json:"dn"`
}

type Nucleus struct {
	Coord  [][]float64 `yaml:"coord" json:"coord"`
	Charge []float64   `yaml:"charge" json:"charge"`
}

// AOBasis mirrors the AO basis fields of a context. The counts may be left
// at zero, in which case they are taken from the array lengths.
type AOBasis struct {
	Type            string    `yaml:"type" json:"type"`
	ShellNum        int64     `yaml:"shell_num,omitempty" json:"shell_num,omitempty"`
	PrimNum         int64     `yaml:"prim_num,omitempty" json:"prim_num,omitempty"`
	AONum           int64     `yaml:"ao_num,omitempty" json:"ao_num,omitempty"`
	NucleusIndex    []int64   `yaml:"nucleus_index" json:"nucleus_index"`
	NucleusShellNum []int64   `yaml:"nucleus_shell_num" json:"nucleus_shell_num"`
	ShellAngMom     []int32   `yaml:"shell_ang_mom" json:"shell_ang_mom"`
	ShellFactor     []float64 `yaml:"shell_factor" json:"shell_factor"`
	ShellPrimNum    []int64   `yaml:"shell_prim_num" json:"shell_prim_num"`
	ShellPrimIndex  []int64   `yaml:"shell_prim_index" json:"shell_prim_index"`
	Exponent        []float64 `yaml:"exponent" json:"exponent"`
	Coefficient     []float64 `yaml:"coefficient" json:"coefficient"`
	PrimFactor      []float64 `yaml:"prim_factor" json:"prim_factor"`
	AOFactor        []float64 `yaml:"ao_factor" json:"ao_factor"`
}

// MOBasis holds one row of AO coefficients per molecular orbital.
type MOBasis struct {
	Coefficient [][]float64 `yaml:"coefficient" json:"coefficient"`
}

type Document struct {
	Name     string      `yaml:"name,omitempty" json:"name,omitempty"`
	Electron Electron    `yaml:"electron" json:"electron"`
	Nucleus  Nucleus     `yaml:"nucleus" json:"nucleus"`
	AOBasis  AOBasis     `yaml:"ao_basis" json:"ao_basis"`
	MOBasis  *MOBasis    `yaml:"mo_basis,omitempty" json:"mo_basis,omitempty"`
	Points   [][]float64 `yaml:"points,omitempty" json:"points,omitempty"`
}

// FormatOf picks the decoder from a file extension. Anything that is not
// .json is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Load reads a system document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read system %s: %w", path, err)
	}
	doc, err := Decode(bytes.NewReader(data), FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode parses and validates a document.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadPoints reads a points-only document ({points: [[x, y, z], ...]}).
func LoadPoints(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read points %s: %w", path, err)
	}
	defer f.Close()
	var doc struct {
		Points [][]float64 `yaml:"points" json:"points"`
	}
	if err := decode(f, FormatOf(path), &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(doc.Points) == 0 {
		return nil, fmt.Errorf("%s: %w: no points", path, ErrInvalid)
	}
	return Flatten("points", doc.Points, 3)
}

func decode(r io.Reader, format Format, v any) error {
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// Flatten concatenates rows that must each hold width values.
func Flatten(name string, rows [][]float64, width int) ([]float64, error) {
	out := make([]float64, 0, len(rows)*width)
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("%w: %s[%d] has %d values, want %d", ErrInvalid, name, i, len(r), width)
		}
		out = append(out, r...)
	}
	return out, nil
}

// Validate checks the document's internal shape. Value ranges are left to
// the context setters.
func (d *Document) Validate() error {
	if len(d.Nucleus.Coord) == 0 {
		return fmt.Errorf("%w: no nuclei", ErrInvalid)
	}
	if len(d.Nucleus.Charge) != len(d.Nucleus.Coord) {
		return fmt.Errorf("%w: %d charges for %d nuclei", ErrInvalid, len(d.Nucleus.Charge), len(d.Nucleus.Coord))
	}
	if _, err := Flatten("nucleus.coord", d.Nucleus.Coord, 3); err != nil {
		return err
	}
	if t := d.AOBasis.Type; len(t) != 1 || !kernel.ShellType(t[0]).Valid() {
		return fmt.Errorf("%w: ao_basis.type %q (expected G or S)", ErrInvalid, t)
	}
	if len(d.Points) > 0 {
		if _, err := Flatten("points", d.Points, 3); err != nil {
			return err
		}
	}
	if d.MOBasis != nil && len(d.MOBasis.Coefficient) == 0 {
		return fmt.Errorf("%w: mo_basis without coefficients", ErrInvalid)
	}
	return nil
}

func orDefault(n int64, fallback int) int64 {
	if n != 0 {
		return n
	}
	return int64(fallback)
}

type step struct {
	field string
	set   func() error
}

// Apply sets every field of d on c in dependency order. It stops at the
// first rejected field and names it.
func (d *Document) Apply(c *orbital.Context) error {
	if err := d.Validate(); err != nil {
		return err
	}
	ao := d.AOBasis
	coord, err := Flatten("nucleus.coord", d.Nucleus.Coord, 3)
	if err != nil {
		return err
	}
	steps := []step{
		{"electron", func() error { return c.SetElectronNum(d.Electron.Up, d.Electron.Dn) }},
		{"nucleus.num", func() error { return c.SetNucleusNum(int64(len(d.Nucleus.Coord))) }},
		{"nucleus.coord", func() error { return c.SetNucleusCoord(orbital.Normal, coord) }},
		{"nucleus.charge", func() error { return c.SetNucleusCharge(d.Nucleus.Charge) }},
		{"ao_basis.type", func() error { return c.SetAOBasisType(kernel.ShellType(ao.Type[0])) }},
		{"ao_basis.shell_num", func() error { return c.SetAOBasisShellNum(orDefault(ao.ShellNum, len(ao.ShellAngMom))) }},
		{"ao_basis.prim_num", func() error { return c.SetAOBasisPrimNum(orDefault(ao.PrimNum, len(ao.Exponent))) }},
		{"ao_basis.ao_num", func() error { return c.SetAONum(orDefault(ao.AONum, len(ao.AOFactor))) }},
		{"ao_basis.nucleus_index", func() error { return c.SetAOBasisNucleusIndex(ao.NucleusIndex) }},
		{"ao_basis.nucleus_shell_num", func() error { return c.SetAOBasisNucleusShellNum(ao.NucleusShellNum) }},
		{"ao_basis.shell_ang_mom", func() error { return c.SetAOBasisShellAngMom(ao.ShellAngMom) }},
		{"ao_basis.shell_factor", func() error { return c.SetAOBasisShellFactor(ao.ShellFactor) }},
		{"ao_basis.shell_prim_num", func() error { return c.SetAOBasisShellPrimNum(ao.ShellPrimNum) }},
		{"ao_basis.shell_prim_index", func() error { return c.SetAOBasisShellPrimIndex(ao.ShellPrimIndex) }},
		{"ao_basis.exponent", func() error { return c.SetAOBasisExponent(ao.Exponent) }},
		{"ao_basis.coefficient", func() error { return c.SetAOBasisCoefficient(ao.Coefficient) }},
		{"ao_basis.prim_factor", func() error { return c.SetAOBasisPrimFactor(ao.PrimFactor) }},
		{"ao_basis.ao_factor", func() error { return c.SetAOBasisAOFactor(ao.AOFactor) }},
	}
	if d.MOBasis != nil {
		mo := d.MOBasis.Coefficient
		aoNum := int(orDefault(ao.AONum, len(ao.AOFactor)))
		steps = append(steps,
			step{"mo_basis.mo_num", func() error { return c.SetMONum(int64(len(mo))) }},
			step{"mo_basis.coefficient", func() error {
				flat, err := Flatten("mo_basis.coefficient", mo, aoNum)
				if err != nil {
					return err
				}
				return c.SetMOCoefficient(flat)
			}},
		)
	}
	if len(d.Points) > 0 {
		steps = append(steps, step{"points", func() error {
			pts, err := Flatten("points", d.Points, 3)
			if err != nil {
				return err
			}
			return c.SetPoints(orbital.Normal, pts)
		}})
	}
	for _, st := range steps {
		if err := st.set(); err != nil {
			return fmt.Errorf("%s: %w", st.field, err)
		}
	}
	return nil
}
