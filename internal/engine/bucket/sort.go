package bucket

import (
	"cmp"
	"slices"

	"go.uber.org/zap"
)

func (o SortOrder) usesProgram() bool {
	return o == SortProgram || o == SortProgramLayout
}

func (o SortOrder) usesLayout() bool {
	return o == SortLayout || o == SortProgramLayout
}

// comparator returns the leaf ordering for o, or nil for SortNone. Every
// comparator falls back to the handle so the order is total and a re-sort
// of sorted input is a no-op.
func comparator(o SortOrder) func(a, b unit) int {
	switch o {
	case SortProgram:
		return func(a, b unit) int {
			if c := cmp.Compare(a.program, b.program); c != 0 {
				return c
			}
			return cmp.Compare(a.handle, b.handle)
		}
	case SortLayout:
		return func(a, b unit) int {
			if c := cmp.Compare(a.layout, b.layout); c != 0 {
				return c
			}
			return cmp.Compare(a.handle, b.handle)
		}
	case SortProgramLayout:
		return func(a, b unit) int {
			if c := cmp.Compare(a.program, b.program); c != 0 {
				return c
			}
			if c := cmp.Compare(a.layout, b.layout); c != 0 {
				return c
			}
			return cmp.Compare(a.handle, b.handle)
		}
	}
	return nil
}

// sort orders the visible partition.
func (b *Bucket) sort() {
	b.radix(b.units[:b.boundary], int(b.bits)-1)
	b.stats.Sorts++
	b.log.Debug("sorted", zap.Int("visible", b.boundary), zap.Uint("priority_bits", b.bits))
}

// radix partitions us on priority bit, most significant first, with the
// bit-set group ahead. Once every bit is consumed the group is handed to the
// comparator.
func (b *Bucket) radix(us []unit, bit int) {
	if len(us) <= 1 {
		return
	}
	if bit < 0 {
		if b.cmp != nil {
			slices.SortFunc(us, b.cmp)
		}
		return
	}
	mask := uint32(1) << uint(bit)
	split := partition(us, func(u *unit) bool { return u.key.priority&mask != 0 })
	b.radix(us[:split], bit-1)
	b.radix(us[split:], bit-1)
}
