// Package bucket batches, orders and dispatches per-frame draw units.
//
// A Bucket accumulates units, each referencing a registered Source and a
// shading Binding, and hands out stable handles for them. Mutations only
// mark the Bucket dirty; the next Process sweeps erased and invisible units
// out of the visible partition, sorts it by priority and GPU state, and then
// issues one draw per visible unit.
//
// A Bucket is not safe for concurrent use. It must be driven from the thread
// that owns the current rendering context.
package bucket

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/engine/handle"
	"github.com/Faultbox/drawbucket/internal/logger"
)

// MaxPriorityBits is the widest priority a unit can carry: a 32-bit state
// word minus the visible and pending-erase flags.
const MaxPriorityBits = 30

const priorityMask = uint32(1)<<MaxPriorityBits - 1

// SortOrder selects the secondary ordering applied inside a priority group.
type SortOrder uint8

const (
	SortNone SortOrder = iota
	SortProgram
	SortLayout
	SortProgramLayout
)

var sortOrderNames = [...]string{
	SortNone:          "none",
	SortProgram:       "program",
	SortLayout:        "layout",
	SortProgramLayout: "program_layout",
}

func (o SortOrder) String() string {
	if int(o) < len(sortOrderNames) {
		return sortOrderNames[o]
	}
	return fmt.Sprintf("SortOrder(%d)", uint8(o))
}

// ParseSortOrder maps a config name to a SortOrder.
func ParseSortOrder(name string) (SortOrder, error) {
	for i, n := range sortOrderNames {
		if n == name {
			return SortOrder(i), nil
		}
	}
	return SortNone, fmt.Errorf("%w: %q", ErrUnknownSortOrder, name)
}

// Options configure a Bucket at creation time.
type Options struct {
	// PriorityBits is the number of low priority bits that are honoured
	// exactly. Clamped to [0, MaxPriorityBits].
	PriorityBits int
	// Order is the secondary ordering within a priority group.
	Order SortOrder
	// BaseInstance enables the base-instance draw variant.
	BaseInstance bool
	// MaxUnits caps the unit store. Zero means unbounded.
	MaxUnits int
	// MaxHandles caps the unit and source handle spaces. Zero means the
	// full uint32 range.
	MaxHandles uint32
	// Logger receives diagnostics. Defaults to the "bucket" child of the
	// global logger.
	Logger *zap.Logger
}

type dirtyFlags uint8

const (
	needsSweep dirtyFlags = 1 << iota
	needsSort
)

// Stats are cumulative counters since creation.
type Stats struct {
	Sweeps uint64
	Sorts  uint64
	Draws  uint64
	Erased uint64
}

// Bucket is the aggregate root owning units, their handles and the sources
// they draw from.
type Bucket struct {
	log *zap.Logger

	units   []unit
	refs    *handle.Table[uint32]
	sources *handle.Table[source]

	// units[:boundary] are the visible, non-erased units after preprocess.
	boundary int
	dirty    dirtyFlags

	bits         uint
	order        SortOrder
	cmp          func(a, b unit) int
	baseInstance bool
	maxUnits     int

	stats Stats
}

// New creates an empty Bucket.
func New(opts Options) *Bucket {
	log := opts.Logger
	if log == nil {
		log = logger.Named("bucket")
	}
	b := &Bucket{
		log:          log,
		refs:         handle.NewTable[uint32](opts.MaxHandles),
		sources:      handle.NewTable[source](opts.MaxHandles),
		bits:         clampBits(opts.PriorityBits),
		order:        opts.Order,
		cmp:          comparator(opts.Order),
		baseInstance: opts.BaseInstance,
		maxUnits:     opts.MaxUnits,
	}
	log.Debug("bucket created",
		zap.Uint("priority_bits", b.bits),
		zap.Stringer("order", b.order),
		zap.Bool("base_instance", b.baseInstance),
		zap.Int("max_units", b.maxUnits),
	)
	return b
}

func clampBits(n int) uint {
	switch {
	case n < 0:
		return 0
	case n > MaxPriorityBits:
		return MaxPriorityBits
	}
	return uint(n)
}

// PriorityBits returns the number of priority bits honoured by the sort.
func (b *Bucket) PriorityBits() int {
	return int(b.bits)
}

// SetPriorityBits changes how finely priority is partitioned. The value is
// clamped to [0, MaxPriorityBits]; a change forces a re-sort.
func (b *Bucket) SetPriorityBits(n int) {
	bits := clampBits(n)
	if bits == b.bits {
		return
	}
	b.bits = bits
	b.dirty |= needsSort
}

// Order returns the secondary sort order chosen at creation.
func (b *Bucket) Order() SortOrder {
	return b.order
}

// Len returns the number of units held, including pending-erase ones.
func (b *Bucket) Len() int {
	return len(b.units)
}

// VisibleLen returns the size of the visible partition as of the last
// Process.
func (b *Bucket) VisibleLen() int {
	return b.boundary
}

// Dirty reports whether the next Process will rebuild the ordering.
func (b *Bucket) Dirty() bool {
	return b.dirty != 0
}

// Stats returns cumulative counters.
func (b *Bucket) Stats() Stats {
	return b.stats
}

// Clear drops every unit and releases their handles. Sources stay
// registered.
func (b *Bucket) Clear() {
	b.stats.Erased += uint64(len(b.units))
	clear(b.units)
	b.units = b.units[:0]
	b.refs.Reset()
	b.boundary = 0
	b.dirty = 0
}
