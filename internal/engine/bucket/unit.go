package bucket

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/engine/handle"
)

// sortKey is the per-unit ordering state.
type sortKey struct {
	priority uint32
	visible  bool
	erase    bool
}

type unit struct {
	key sortKey

	// GPU resource keys for the secondary ordering.
	program uint32
	layout  uint32

	handle  handle.Handle
	source  handle.Handle
	binding Binding
	copy    uint32

	indexed      bool
	instances    uint32
	baseInstance uint32
	vertexBase   int32
	variant      Variant
}

func (u *unit) resolve(baseSupported bool) {
	u.variant = resolveVariant(u.indexed, u.instances, u.baseInstance, baseSupported)
}

// UnitDesc describes a unit to insert.
type UnitDesc struct {
	Source   handle.Handle
	Binding  Binding
	Copy     uint32
	Priority uint32
	Visible  bool
	// Instances defaults to 1 when zero.
	Instances    uint32
	BaseInstance uint32
	VertexBase   int32
}

// UnitInfo is a snapshot of a unit's state.
type UnitInfo struct {
	Handle       handle.Handle
	Source       handle.Handle
	Binding      Binding
	Copy         uint32
	Priority     uint32
	Visible      bool
	PendingErase bool
	Program      uint32
	Layout       uint32
	Instances    uint32
	BaseInstance uint32
	VertexBase   int32
	Variant      Variant
}

// Insert adds a unit and returns its handle. On error the Bucket is left
// exactly as it was.
func (b *Bucket) Insert(d UnitDesc) (handle.Handle, error) {
	src, ok := b.sources.Lookup(d.Source)
	if !ok {
		return handle.Nil, fmt.Errorf("insert: source %d: %w", d.Source, ErrInvalidSource)
	}
	if d.Binding == nil {
		return handle.Nil, fmt.Errorf("insert: %w", ErrNilBinding)
	}
	if b.maxUnits > 0 && len(b.units) >= b.maxUnits {
		b.log.Error("unit store full", zap.Int("max_units", b.maxUnits))
		return handle.Nil, fmt.Errorf("insert: %w", ErrCapacity)
	}

	u := unit{
		key:          sortKey{priority: d.Priority & priorityMask, visible: d.Visible},
		program:      d.Binding.ProgramID(),
		layout:       src.layout.LayoutID(),
		source:       d.Source,
		binding:      d.Binding,
		copy:         d.Copy,
		indexed:      src.layout.Indexed(),
		instances:    max(d.Instances, 1),
		baseInstance: d.BaseInstance,
		vertexBase:   d.VertexBase,
	}
	u.resolve(b.baseInstance)

	idx := len(b.units)
	b.units = append(b.units, u)
	h, err := b.refs.Allocate(uint32(idx + 1))
	if err != nil {
		b.units[idx] = unit{}
		b.units = b.units[:idx]
		b.log.Error("unit handle overflow", zap.Int("units", idx), zap.Error(err))
		return handle.Nil, fmt.Errorf("insert: %w", err)
	}
	b.units[idx].handle = h

	// New units land past the visible boundary; only a visible one has to
	// be pulled into the sorted partition.
	if d.Visible {
		b.dirty |= needsSweep | needsSort
	}
	return h, nil
}

// Valid reports whether h refers to a unit held by the Bucket.
func (b *Bucket) Valid(h handle.Handle) bool {
	ref, ok := b.refs.Lookup(h)
	return ok && ref != 0 && int(ref) <= len(b.units) && b.units[ref-1].handle == h
}

// index resolves a live handle to its slot in the dense array.
func (b *Bucket) index(h handle.Handle) int {
	return int(b.refs.Get(h)) - 1
}

// at returns the unit for h. Passing a handle that is not live is a caller
// error.
func (b *Bucket) at(h handle.Handle) *unit {
	return &b.units[b.index(h)]
}

// Unit returns a snapshot of the unit for h.
func (b *Bucket) Unit(h handle.Handle) UnitInfo {
	u := b.at(h)
	return UnitInfo{
		Handle:       u.handle,
		Source:       u.source,
		Binding:      u.binding,
		Copy:         u.copy,
		Priority:     u.key.priority,
		Visible:      u.key.visible,
		PendingErase: u.key.erase,
		Program:      u.program,
		Layout:       u.layout,
		Instances:    u.instances,
		BaseInstance: u.baseInstance,
		VertexBase:   u.vertexBase,
		Variant:      u.variant,
	}
}

// Erase removes the unit for h. A unit past the visible boundary is removed
// at once and its handle freed; a unit inside the visible partition is
// marked and removed by the next sweep.
func (b *Bucket) Erase(h handle.Handle) {
	i := b.index(h)
	u := &b.units[i]
	if u.key.erase {
		return
	}
	if i >= b.boundary {
		b.swapRemove(i)
		b.refs.Release(h)
		b.stats.Erased++
		return
	}
	u.key.erase = true
	b.dirty |= needsSweep | needsSort
}

// SetVisible shows or hides the unit for h.
func (b *Bucket) SetVisible(h handle.Handle, visible bool) {
	u := b.at(h)
	if u.key.erase || u.key.visible == visible {
		return
	}
	u.key.visible = visible
	b.dirty |= needsSweep | needsSort
}

// SetPriority changes the manual priority of the unit for h. Bits above
// MaxPriorityBits are dropped.
func (b *Bucket) SetPriority(h handle.Handle, priority uint32) {
	u := b.at(h)
	priority &= priorityMask
	if u.key.erase || u.key.priority == priority {
		return
	}
	u.key.priority = priority
	if u.key.visible {
		b.dirty |= needsSort
	}
}

// SetBinding replaces the shading binding and copy index of the unit for h.
func (b *Bucket) SetBinding(h handle.Handle, binding Binding, copyIndex uint32) error {
	if binding == nil {
		return fmt.Errorf("set binding: %w", ErrNilBinding)
	}
	u := b.at(h)
	if u.key.erase {
		return nil
	}
	program := binding.ProgramID()
	if program != u.program && u.key.visible && b.order.usesProgram() {
		b.dirty |= needsSort
	}
	u.binding = binding
	u.program = program
	u.copy = copyIndex
	return nil
}

// SetCopy selects another uniform copy of the unit's binding.
func (b *Bucket) SetCopy(h handle.Handle, copyIndex uint32) {
	u := b.at(h)
	if u.key.erase {
		return
	}
	u.copy = copyIndex
}

// SetInstances changes the instance count of the unit for h. Zero is
// treated as one.
func (b *Bucket) SetInstances(h handle.Handle, instances uint32) {
	u := b.at(h)
	instances = max(instances, 1)
	if u.key.erase || u.instances == instances {
		return
	}
	u.instances = instances
	u.resolve(b.baseInstance)
}

// SetBaseInstance changes the first instance index of the unit for h.
func (b *Bucket) SetBaseInstance(h handle.Handle, baseInstance uint32) {
	u := b.at(h)
	if u.key.erase || u.baseInstance == baseInstance {
		return
	}
	u.baseInstance = baseInstance
	u.resolve(b.baseInstance)
}

// SetVertexBase changes the value added to every index of the unit for h.
func (b *Bucket) SetVertexBase(h handle.Handle, vertexBase int32) {
	u := b.at(h)
	if u.key.erase {
		return
	}
	u.vertexBase = vertexBase
}
