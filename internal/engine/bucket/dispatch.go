package bucket

// preprocess rebuilds the visible partition if anything changed since the
// last call: sweep, sort when due, then repair the handle table.
func (b *Bucket) preprocess() {
	if b.dirty == 0 {
		return
	}
	b.sweep()
	if b.dirty&needsSort != 0 {
		b.sort()
	}
	b.fixRefs()
	b.dirty = 0
}

// Process brings the Bucket up to date, applies state once and issues one
// draw per visible unit in sorted order. state may be nil. It returns the
// number of draws issued.
func (b *Bucket) Process(state RenderState) int {
	b.preprocess()
	if state != nil {
		state.Apply()
	}
	for i := 0; i < b.boundary; i++ {
		u := &b.units[i]
		src := b.sources.Get(u.source)
		u.binding.Bind(u.copy, u.baseInstance)
		src.layout.Draw(src.rng, u.instances, u.baseInstance, u.vertexBase, u.variant)
	}
	b.stats.Draws += uint64(b.boundary)
	return b.boundary
}

// Flush runs the preprocess pass without drawing anything.
func (b *Bucket) Flush() {
	b.preprocess()
}

// Visible calls fn for every visible unit in dispatch order as of the last
// Process or Flush. fn must not mutate the Bucket.
func (b *Bucket) Visible(fn func(UnitInfo) bool) {
	for i := 0; i < b.boundary; i++ {
		if !fn(b.Unit(b.units[i].handle)) {
			return
		}
	}
}
