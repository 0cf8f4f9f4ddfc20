package scenefile

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/engine/bucket"
)

func TestLoadBasic(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "basic.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if s.PriorityBits == nil || *s.PriorityBits != 2 {
		t.Errorf("expected priority_bits 2, got %v", s.PriorityBits)
	}
	if len(s.Sources) != 2 || len(s.Units) != 3 || len(s.Frames) != 4 {
		t.Fatalf("unexpected shape: %d sources, %d units, %d frames", len(s.Sources), len(s.Units), len(s.Frames))
	}
	if !s.Sources[0].Indexed || s.Sources[1].First != 4 {
		t.Errorf("sources not decoded: %+v", s.Sources)
	}
	if !s.Units[0].IsVisible() || s.Units[2].IsVisible() {
		t.Error("visible default not applied")
	}
	if s.Frames[1].Priority["hero"] != 0 || len(s.Frames[1].Hide) != 1 {
		t.Errorf("frame 1 not decoded: %+v", s.Frames[1])
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if len(s.Units) != 0 {
		t.Errorf("expected no units, got %d", len(s.Units))
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("unitz: []\n")); err == nil {
		t.Error("expected unknown key to be rejected")
	}
}

func TestValidate(t *testing.T) {
	data := `
sources:
  - name: quad
  - name: quad
  - {}
units:
  - name: a
    source: quad
  - name: a
    source: quad
  - name: b
    source: missing
frames:
  - hide: [ghost]
    erase: [a]
    remove_sources: [quad]
  - insert:
      - name: c
        source: quad
    remove_sources: [quad]
`
	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatal("expected validation errors")
	}

	want := []string{
		`sources[1]: duplicate name "quad"`,
		`sources[2]: missing name`,
		`units[1]: duplicate name "a"`,
		`units[2]: unknown source "missing"`,
		`frames[0].hide: unknown unit "ghost"`,
		`frames[1].insert[0]: unknown source "quad"`,
		`frames[1].remove_sources: unknown source "quad"`,
	}
	errs := multierr.Errors(err)
	if len(errs) != len(want) {
		t.Errorf("expected %d errors, got %d: %v", len(want), len(errs), err)
	}
	for _, w := range want {
		if !strings.Contains(err.Error(), w) {
			t.Errorf("missing error %q", w)
		}
	}
}

func newPlayer(t *testing.T, path string, opts bucket.Options) *Player {
	t.Helper()
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts.Logger = zap.NewNop()
	p, err := NewPlayer(s, bucket.New(opts))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	return p
}

func TestPlayerRun(t *testing.T) {
	p := newPlayer(t, filepath.Join("testdata", "basic.yaml"), bucket.Options{Order: bucket.SortProgram})

	want := [][]string{
		{"sky", "hero"},
		{"sky", "hero", "fog"},
		{"fog", "hero"},
		{"tree", "fog"},
		{"tree"},
	}
	var got [][]string
	var first []Call
	err := p.Run(func(frame int, calls []Call) {
		if frame == 0 {
			first = calls
		}
		got = append(got, Order(calls))
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("frame %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	hero := first[1]
	if hero.Layout != 2 || hero.Range != (bucket.Range{First: 4, Count: 4}) || hero.Instances != 4 ||
		hero.Variant != bucket.VariantInstanced || hero.Program != 3 {
		t.Errorf("unexpected hero draw: %+v", hero)
	}

	if _, ok, err := p.Next(); ok || err != nil {
		t.Errorf("expected player to be exhausted, ok=%v err=%v", ok, err)
	}
}

func TestPlayerSkipsErasedUnits(t *testing.T) {
	data := `
sources:
  - name: quad
    count: 6
units:
  - name: a
    source: quad
  - name: b
    source: quad
    program: 1
frames:
  - erase: [a]
  - hide: [a]
    show: [b]
`
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := newPlayer(t, path, bucket.Options{Order: bucket.SortProgram})

	var last []Call
	if err := p.Run(func(_ int, calls []Call) { last = calls }); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := Order(last); !slices.Equal(got, []string{"b"}) {
		t.Errorf("expected [b], got %v", got)
	}
}
