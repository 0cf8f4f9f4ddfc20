// Package scenefile loads YAML descriptions of bucket workloads: the sources
// to register, the units to insert and a sequence of frames that mutate them.
package scenefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Scene is a parsed scene file.
type Scene struct {
	PriorityBits *int         `yaml:"priority_bits"`
	Sources      []SourceDecl `yaml:"sources"`
	Units        []UnitDecl   `yaml:"units"`
	Frames       []FrameDecl  `yaml:"frames"`
}

// SourceDecl describes a geometry source.
type SourceDecl struct {
	Name    string `yaml:"name"`
	Layout  uint32 `yaml:"layout"`
	Indexed bool   `yaml:"indexed"`
	First   uint32 `yaml:"first"`
	Count   uint32 `yaml:"count"`
}

// UnitDecl describes a unit. Units are visible unless Visible is false.
type UnitDecl struct {
	Name         string `yaml:"name"`
	Source       string `yaml:"source"`
	Program      uint32 `yaml:"program"`
	Copy         uint32 `yaml:"copy"`
	Priority     uint32 `yaml:"priority"`
	Visible      *bool  `yaml:"visible"`
	Instances    uint32 `yaml:"instances"`
	BaseInstance uint32 `yaml:"base_instance"`
	VertexBase   int32  `yaml:"vertex_base"`
}

// IsVisible resolves the default for Visible.
func (u UnitDecl) IsVisible() bool {
	return u.Visible == nil || *u.Visible
}

// FrameDecl lists the mutations applied before a frame is dispatched.
// They run in field order: inserts, shows, hides, priorities, erases,
// source removals, then the priority width change.
type FrameDecl struct {
	Insert        []UnitDecl        `yaml:"insert"`
	Show          []string          `yaml:"show"`
	Hide          []string          `yaml:"hide"`
	Priority      map[string]uint32 `yaml:"priority"`
	Erase         []string          `yaml:"erase"`
	RemoveSources []string          `yaml:"remove_sources"`
	PriorityBits  *int              `yaml:"priority_bits"`
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates scene data.
func Parse(data []byte) (*Scene, error) {
	return decode(bytes.NewReader(data))
}

func decode(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks names and cross references, reporting every problem.
func (s *Scene) Validate() error {
	var errs error

	sources := make(map[string]bool, len(s.Sources))
	for i, src := range s.Sources {
		switch {
		case src.Name == "":
			errs = multierr.Append(errs, fmt.Errorf("sources[%d]: missing name", i))
		case sources[src.Name]:
			errs = multierr.Append(errs, fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name))
		}
		sources[src.Name] = true
	}

	// removed tracks sources gone by the current frame; units holds every
	// unit name ever declared, since names are never reused.
	removed := make(map[string]bool)
	units := make(map[string]bool)
	addUnit := func(where string, u UnitDecl) {
		switch {
		case u.Name == "":
			errs = multierr.Append(errs, fmt.Errorf("%s: missing name", where))
		case units[u.Name]:
			errs = multierr.Append(errs, fmt.Errorf("%s: duplicate name %q", where, u.Name))
		}
		if !sources[u.Source] || removed[u.Source] {
			errs = multierr.Append(errs, fmt.Errorf("%s: unknown source %q", where, u.Source))
		}
		units[u.Name] = true
	}
	checkUnit := func(where, name string) {
		if !units[name] {
			errs = multierr.Append(errs, fmt.Errorf("%s: unknown unit %q", where, name))
		}
	}

	for i, u := range s.Units {
		addUnit(fmt.Sprintf("units[%d]", i), u)
	}
	for i, f := range s.Frames {
		where := fmt.Sprintf("frames[%d]", i)
		for j, u := range f.Insert {
			addUnit(fmt.Sprintf("%s.insert[%d]", where, j), u)
		}
		for _, name := range f.Show {
			checkUnit(where+".show", name)
		}
		for _, name := range f.Hide {
			checkUnit(where+".hide", name)
		}
		for name := range f.Priority {
			checkUnit(where+".priority", name)
		}
		for _, name := range f.Erase {
			checkUnit(where+".erase", name)
		}
		for _, name := range f.RemoveSources {
			if !sources[name] || removed[name] {
				errs = multierr.Append(errs, fmt.Errorf("%s.remove_sources: unknown source %q", where, name))
			}
			removed[name] = true
		}
	}
	return errs
}
