package demo

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/engine/bucket"
	"github.com/Faultbox/drawbucket/internal/engine/handle"
)

// maxCycleBits bounds the priority widths the demo cycles through.
const maxCycleBits = 4

// GridConfig sizes a Grid.
type GridConfig struct {
	Columns int
	Rows    int
	Seed    uint64
}

// Grid drives a bucket with one unit per cell. Cells keep their copy index,
// so a material copy addresses the cell's position on screen even when the
// unit behind it is erased and inserted again.
type Grid struct {
	b        *bucket.Bucket
	src      handle.Handle
	bindings []bucket.Binding
	log      *zap.Logger

	cols, rows int
	cells      []handle.Handle
	rng        *rand.Rand
}

// StepStats reports what one Step changed.
type StepStats struct {
	Toggled     int
	Prioritized int
	Respawned   int
}

// NewGrid inserts Columns*Rows units drawing from src with a random binding
// out of bindings.
func NewGrid(b *bucket.Bucket, src handle.Handle, bindings []bucket.Binding, cfg GridConfig, log *zap.Logger) (*Grid, error) {
	if len(bindings) == 0 {
		return nil, fmt.Errorf("grid: no bindings")
	}
	if cfg.Columns <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("grid: invalid size %dx%d", cfg.Columns, cfg.Rows)
	}
	g := &Grid{
		b:        b,
		src:      src,
		bindings: bindings,
		log:      log,
		cols:     cfg.Columns,
		rows:     cfg.Rows,
		cells:    make([]handle.Handle, cfg.Columns*cfg.Rows),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
	for i := range g.cells {
		h, err := g.spawn(i, g.rng.IntN(4) != 0)
		if err != nil {
			return nil, fmt.Errorf("grid: cell %d: %w", i, err)
		}
		g.cells[i] = h
	}
	log.Info("grid created", zap.Int("columns", g.cols), zap.Int("rows", g.rows))
	return g, nil
}

func (g *Grid) spawn(cell int, visible bool) (handle.Handle, error) {
	return g.b.Insert(bucket.UnitDesc{
		Source:   g.src,
		Binding:  g.bindings[g.rng.IntN(len(g.bindings))],
		Copy:     uint32(cell),
		Priority: g.priority(),
		Visible:  visible,
	})
}

func (g *Grid) priority() uint32 {
	return g.rng.Uint32N(1 << maxCycleBits)
}

// Size returns the grid dimensions.
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// Cell returns the handle currently backing cell i.
func (g *Grid) Cell(i int) handle.Handle {
	return g.cells[i]
}

// Step toggles and re-prioritizes a random eighth of the cells and
// replaces one cell's unit.
func (g *Grid) Step() (StepStats, error) {
	var st StepStats
	n := max(1, len(g.cells)/8)

	for range n {
		h := g.cells[g.rng.IntN(len(g.cells))]
		g.b.SetVisible(h, !g.b.Unit(h).Visible)
		st.Toggled++
	}
	for range n {
		h := g.cells[g.rng.IntN(len(g.cells))]
		g.b.SetPriority(h, g.priority())
		st.Prioritized++
	}

	i := g.rng.IntN(len(g.cells))
	old := g.cells[i]
	visible := g.b.Unit(old).Visible
	g.b.Erase(old)
	h, err := g.spawn(i, visible)
	if err != nil {
		return st, fmt.Errorf("respawn cell %d: %w", i, err)
	}
	g.cells[i] = h
	st.Respawned++

	g.log.Debug("grid step",
		zap.Int("toggled", st.Toggled),
		zap.Int("prioritized", st.Prioritized),
		zap.Int("cell", i),
		zap.Uint32("old", uint32(old)),
		zap.Uint32("new", uint32(h)),
	)
	return st, nil
}

// Shuffle gives every cell a new priority and binding.
func (g *Grid) Shuffle() error {
	for _, h := range g.cells {
		g.b.SetPriority(h, g.priority())
		binding := g.bindings[g.rng.IntN(len(g.bindings))]
		if err := g.b.SetBinding(h, binding, g.b.Unit(h).Copy); err != nil {
			return fmt.Errorf("shuffle: %w", err)
		}
	}
	g.log.Debug("grid shuffled")
	return nil
}

// CycleBits advances the bucket's priority width through 0..4 and returns
// the new width.
func (g *Grid) CycleBits() int {
	bits := (g.b.PriorityBits() + 1) % (maxCycleBits + 1)
	g.b.SetPriorityBits(bits)
	g.log.Info("priority bits changed", zap.Int("bits", bits))
	return bits
}

// Placement returns the centre and half extents of cell i in normalized
// device coordinates, with row 0 at the top.
func (g *Grid) Placement(i int) (offset, scale [2]float32) {
	w := 2 / float32(g.cols)
	h := 2 / float32(g.rows)
	col, row := i%g.cols, i/g.cols
	offset = [2]float32{-1 + w*(float32(col)+0.5), 1 - h*(float32(row)+0.5)}
	scale = [2]float32{w * 0.6, h * 0.6}
	return offset, scale
}
