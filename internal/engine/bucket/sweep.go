package bucket

import "go.uber.org/zap"

// partition moves every unit satisfying front ahead of the others with a
// two-pointer swap scan and returns how many satisfied it. Input that is
// already partitioned is left untouched.
func partition(us []unit, front func(*unit) bool) int {
	i, j := 0, len(us)-1
	for {
		for i <= j && front(&us[i]) {
			i++
		}
		for i <= j && !front(&us[j]) {
			j--
		}
		if i >= j {
			return i
		}
		us[i], us[j] = us[j], us[i]
		i++
		j--
	}
}

func alive(u *unit) bool   { return !u.key.erase }
func visible(u *unit) bool { return u.key.visible }

// sweep drops pending-erase units and splits the rest into the visible
// partition and the invisible tail.
func (b *Bucket) sweep() {
	n := len(b.units)
	kept := partition(b.units, alive)
	for i := kept; i < n; i++ {
		b.refs.Release(b.units[i].handle)
		b.units[i] = unit{}
	}
	b.units = b.units[:kept]
	b.boundary = partition(b.units, visible)

	erased := n - kept
	b.stats.Sweeps++
	b.stats.Erased += uint64(erased)
	b.log.Debug("swept",
		zap.Int("erased", erased),
		zap.Int("visible", b.boundary),
		zap.Int("units", kept),
	)
}

// swapRemove deletes units[i] by moving the last unit into its place. Only
// the moved unit's reference slot needs patching.
func (b *Bucket) swapRemove(i int) {
	last := len(b.units) - 1
	if i != last {
		b.units[i] = b.units[last]
		b.refs.Set(b.units[i].handle, uint32(i+1))
	}
	b.units[last] = unit{}
	b.units = b.units[:last]
}

// fixRefs points every live handle back at its unit after a bulk reorder.
func (b *Bucket) fixRefs() {
	for i := range b.units {
		b.refs.Set(b.units[i].handle, uint32(i+1))
	}
}
