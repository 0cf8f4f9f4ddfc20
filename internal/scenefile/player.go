package scenefile

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/engine/bucket"
	"github.com/Faultbox/drawbucket/internal/engine/handle"
	"github.com/Faultbox/drawbucket/internal/logger"
)

// Call is one draw as dispatched by the bucket.
type Call struct {
	Unit         string
	Program      uint32
	Copy         uint32
	Layout       uint32
	Range        bucket.Range
	Instances    uint32
	BaseInstance uint32
	VertexBase   int32
	Variant      bucket.Variant
}

// Player replays a Scene against a Bucket with recording collaborators.
type Player struct {
	scene *Scene
	b     *bucket.Bucket
	log   *zap.Logger

	sources map[string]handle.Handle
	units   map[string]handle.Handle
	owner   map[string]string // unit name -> source name

	bound    *recBinding
	copy     uint32
	calls    []Call
	next     int
	finished bool
}

type recLayout struct {
	id      uint32
	indexed bool
	p       *Player
}

func (l *recLayout) LayoutID() uint32 { return l.id }
func (l *recLayout) Indexed() bool    { return l.indexed }

func (l *recLayout) Draw(rng bucket.Range, instances, baseInstance uint32, vertexBase int32, v bucket.Variant) {
	c := Call{
		Layout:       l.id,
		Range:        rng,
		Instances:    instances,
		BaseInstance: baseInstance,
		VertexBase:   vertexBase,
		Variant:      v,
		Copy:         l.p.copy,
	}
	if b := l.p.bound; b != nil {
		c.Unit, c.Program = b.name, b.program
	}
	l.p.calls = append(l.p.calls, c)
}

type recBinding struct {
	name    string
	program uint32
	p       *Player
}

func (r *recBinding) ProgramID() uint32 { return r.program }

func (r *recBinding) Bind(copyIndex, baseInstance uint32) {
	r.p.bound = r
	r.p.copy = copyIndex
}

// NewPlayer registers the scene's sources and initial units with b.
func NewPlayer(s *Scene, b *bucket.Bucket) (*Player, error) {
	p := &Player{
		scene:   s,
		b:       b,
		log:     logger.Named("scene"),
		sources: make(map[string]handle.Handle, len(s.Sources)),
		units:   make(map[string]handle.Handle, len(s.Units)),
		owner:   make(map[string]string, len(s.Units)),
	}
	if s.PriorityBits != nil {
		b.SetPriorityBits(*s.PriorityBits)
	}
	for _, src := range s.Sources {
		layout := &recLayout{id: src.Layout, indexed: src.Indexed, p: p}
		id, err := b.AddSource(layout, bucket.Range{First: src.First, Count: src.Count})
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Name, err)
		}
		p.sources[src.Name] = id
	}
	for _, u := range s.Units {
		if err := p.insert(u); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Player) insert(u UnitDecl) error {
	h, err := p.b.Insert(bucket.UnitDesc{
		Source:       p.sources[u.Source],
		Binding:      &recBinding{name: u.Name, program: u.Program, p: p},
		Copy:         u.Copy,
		Priority:     u.Priority,
		Visible:      u.IsVisible(),
		Instances:    u.Instances,
		BaseInstance: u.BaseInstance,
		VertexBase:   u.VertexBase,
	})
	if err != nil {
		return fmt.Errorf("unit %q: %w", u.Name, err)
	}
	p.units[u.Name] = h
	p.owner[u.Name] = u.Source
	return nil
}

// Frames returns the number of frames the player produces, the initial one
// included.
func (p *Player) Frames() int {
	return len(p.scene.Frames) + 1
}

// Next applies the next frame's mutations and dispatches it. The first call
// dispatches the initial state. ok is false once every frame has run.
func (p *Player) Next() (calls []Call, ok bool, err error) {
	if p.finished {
		return nil, false, nil
	}
	if p.next > 0 {
		if err := p.apply(p.scene.Frames[p.next-1]); err != nil {
			return nil, false, fmt.Errorf("frame %d: %w", p.next, err)
		}
	}
	p.next++
	if p.next >= p.Frames() {
		p.finished = true
	}

	p.calls = p.calls[:0]
	p.bound = nil
	p.b.Process(nil)
	return slices.Clone(p.calls), true, nil
}

// Run dispatches every frame in order and hands each one to fn.
func (p *Player) Run(fn func(frame int, calls []Call)) error {
	for frame := 0; ; frame++ {
		calls, ok, err := p.Next()
		if err != nil || !ok {
			return err
		}
		fn(frame, calls)
	}
}

func (p *Player) apply(f FrameDecl) error {
	for _, u := range f.Insert {
		if err := p.insert(u); err != nil {
			return err
		}
	}
	for _, name := range f.Show {
		if h, ok := p.live(name); ok {
			p.b.SetVisible(h, true)
		}
	}
	for _, name := range f.Hide {
		if h, ok := p.live(name); ok {
			p.b.SetVisible(h, false)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(f.Priority)) {
		if h, ok := p.live(name); ok {
			p.b.SetPriority(h, f.Priority[name])
		}
	}
	for _, name := range f.Erase {
		if h, ok := p.live(name); ok {
			p.b.Erase(h)
			delete(p.units, name)
			delete(p.owner, name)
		}
	}
	for _, name := range f.RemoveSources {
		if err := p.b.RemoveSource(p.sources[name]); err != nil {
			return fmt.Errorf("remove source %q: %w", name, err)
		}
		delete(p.sources, name)
		for unit, src := range p.owner {
			if src == name {
				delete(p.units, unit)
				delete(p.owner, unit)
			}
		}
	}
	if f.PriorityBits != nil {
		p.b.SetPriorityBits(*f.PriorityBits)
	}
	return nil
}

// live resolves a unit name that has not been erased yet.
func (p *Player) live(name string) (handle.Handle, bool) {
	h, ok := p.units[name]
	if !ok {
		p.log.Debug("skipping unit no longer in the bucket", zap.String("unit", name))
	}
	return h, ok
}

// Order returns the unit names of calls.
func Order(calls []Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Unit
	}
	return out
}
