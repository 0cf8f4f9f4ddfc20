package bucket

import (
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/engine/handle"
)

// drawCall is one Layout.Draw as seen by a fake layout, tagged with the copy
// index of the binding call that preceded it.
type drawCall struct {
	tag          uint32
	program      uint32
	layout       uint32
	rng          Range
	instances    uint32
	baseInstance uint32
	vertexBase   int32
	variant      Variant
}

type recorder struct {
	applied int
	lastTag uint32
	lastPrg uint32
	draws   []drawCall
}

func (r *recorder) Apply() { r.applied++ }

func (r *recorder) reset() {
	r.draws = r.draws[:0]
}

func (r *recorder) tags() []uint32 {
	out := make([]uint32, len(r.draws))
	for i, d := range r.draws {
		out[i] = d.tag
	}
	return out
}

func (r *recorder) programs() []uint32 {
	out := make([]uint32, len(r.draws))
	for i, d := range r.draws {
		out[i] = d.program
	}
	return out
}

type fakeLayout struct {
	id      uint32
	indexed bool
	rec     *recorder
}

func (l *fakeLayout) LayoutID() uint32 { return l.id }
func (l *fakeLayout) Indexed() bool    { return l.indexed }

func (l *fakeLayout) Draw(rng Range, instances, baseInstance uint32, vertexBase int32, v Variant) {
	l.rec.draws = append(l.rec.draws, drawCall{
		tag:          l.rec.lastTag,
		program:      l.rec.lastPrg,
		layout:       l.id,
		rng:          rng,
		instances:    instances,
		baseInstance: baseInstance,
		vertexBase:   vertexBase,
		variant:      v,
	})
}

type fakeBinding struct {
	program uint32
	rec     *recorder
}

func (f *fakeBinding) ProgramID() uint32 { return f.program }

func (f *fakeBinding) Bind(copyIndex, baseInstance uint32) {
	f.rec.lastTag = copyIndex
	f.rec.lastPrg = f.program
}

// fixture is a Bucket with one registered source and a recorder.
type fixture struct {
	t      *testing.T
	b      *Bucket
	rec    *recorder
	layout *fakeLayout
	src    handle.Handle
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	rec := &recorder{}
	f := &fixture{t: t, b: New(opts), rec: rec, layout: &fakeLayout{id: 1, rec: rec}}
	src, err := f.b.AddSource(f.layout, Range{First: 0, Count: 6})
	if err != nil {
		t.Fatalf("add source: %v", err)
	}
	f.src = src
	return f
}

func (f *fixture) binding(program uint32) *fakeBinding {
	return &fakeBinding{program: program, rec: f.rec}
}

// insert adds a unit tagged with tag (its copy index).
func (f *fixture) insert(tag, program, priority uint32, visible bool) handle.Handle {
	f.t.Helper()
	h, err := f.b.Insert(UnitDesc{
		Source:   f.src,
		Binding:  f.binding(program),
		Copy:     tag,
		Priority: priority,
		Visible:  visible,
	})
	if err != nil {
		f.t.Fatalf("insert: %v", err)
	}
	return h
}

// frame runs one Process and returns the dispatched tags.
func (f *fixture) frame() []uint32 {
	f.rec.reset()
	f.b.Process(f.rec)
	return f.rec.tags()
}
