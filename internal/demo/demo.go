// Package demo runs an interactive window that feeds a grid of quads through
// a bucket every frame.
package demo

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.2-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/config"
	"github.com/Faultbox/drawbucket/internal/demo/shaders"
	"github.com/Faultbox/drawbucket/internal/engine/bucket"
	"github.com/Faultbox/drawbucket/internal/engine/input"
	"github.com/Faultbox/drawbucket/internal/engine/renderer"
	"github.com/Faultbox/drawbucket/internal/engine/shader"
	"github.com/Faultbox/drawbucket/internal/engine/window"
	"github.com/Faultbox/drawbucket/internal/logger"
)

const title = "drawbucket"

// Demo is the interactive demo instance.
type Demo struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool
	paused  bool
	capture bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	programs []*shader.Program
	layouts  []*renderer.VertexLayout

	cells       *bucket.Bucket
	markers     *bucket.Bucket
	cellState   *renderer.Pipeline
	markerState *renderer.Pipeline
	grid        *Grid
}

// New opens the window and builds the scene.
func New(cfg *config.Config) (*Demo, error) {
	d := &Demo{
		cfg: cfg,
		log: logger.Named("demo"),
	}

	var err error
	d.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		GLMajor:    cfg.Graphics.GLMajor,
		GLMinor:    cfg.Graphics.GLMinor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just created
	width, height := d.window.GetSize()
	d.renderer, err = renderer.New(renderer.Config{
		Width:  width,
		Height: height,
		Clear:  [4]float32{0.1, 0.1, 0.15, 1.0},
	})
	if err != nil {
		d.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	d.input = input.New()

	if err := d.setup(); err != nil {
		d.Close()
		return nil, err
	}

	d.log.Info("demo initialized")
	return d, nil
}

func (d *Demo) compile(vert, frag string) (*shader.Program, error) {
	p, err := shader.Compile(vert, frag)
	if err != nil {
		return nil, err
	}
	d.programs = append(d.programs, p)
	return p, nil
}

func (d *Demo) setup() error {
	opts, err := d.cfg.BucketOptions()
	if err != nil {
		return err
	}
	if opts.BaseInstance && !d.renderer.BaseInstance() {
		d.log.Warn("base instance requested but not supported by the context")
		opts.BaseInstance = false
	}

	solid, err := d.compile(shaders.CellVertexShader, shaders.SolidFragmentShader)
	if err != nil {
		return fmt.Errorf("solid program: %w", err)
	}
	stripe, err := d.compile(shaders.CellVertexShader, shaders.StripeFragmentShader)
	if err != nil {
		return fmt.Errorf("stripe program: %w", err)
	}
	marker, err := d.compile(shaders.MarkerVertexShader, shaders.SolidFragmentShader)
	if err != nil {
		return fmt.Errorf("marker program: %w", err)
	}

	pos := []renderer.Attrib{{Location: 0, Size: 2}}
	quad := renderer.NewVertexLayout(gl.TRIANGLES,
		[]float32{-1, -1, 1, -1, 1, 1, -1, 1}, 2*4, pos,
		[]uint32{0, 1, 2, 2, 3, 0})
	tri := renderer.NewVertexLayout(gl.TRIANGLES,
		[]float32{-1, -1, 1, -1, 0, 1}, 2*4, pos, nil)
	d.layouts = append(d.layouts, quad, tri)

	// Cells: one unit per grid cell, two programs to sort between.
	d.cells = bucket.New(opts)
	d.cellState = &renderer.Pipeline{Blend: true}
	quadSrc, err := d.cells.AddSource(quad, bucket.Range{First: 0, Count: 6})
	if err != nil {
		return fmt.Errorf("quad source: %w", err)
	}
	solidMat := shader.NewMaterial(solid)
	stripeMat := shader.NewMaterial(stripe)
	d.grid, err = NewGrid(d.cells, quadSrc, []bucket.Binding{solidMat, stripeMat}, GridConfig{
		Columns: d.cfg.Demo.Columns,
		Rows:    d.cfg.Demo.Rows,
		Seed:    uint64(time.Now().UnixNano()),
	}, d.log)
	if err != nil {
		return err
	}
	cols, rows := d.grid.Size()
	for i := range cols * rows {
		offset, scale := d.grid.Placement(i)
		c := shader.Copy{Offset: offset, Scale: scale, Color: cellColor(i, cols, rows)}
		solidMat.AddCopy(c)
		stripeMat.AddCopy(c)
	}

	// Markers: one instanced unit along the bottom edge.
	mopts := opts
	mopts.Order = bucket.SortNone
	mopts.Logger = logger.Named("markers")
	d.markers = bucket.New(mopts)
	d.markerState = &renderer.Pipeline{}
	triSrc, err := d.markers.AddSource(tri, bucket.Range{First: 0, Count: 3})
	if err != nil {
		return fmt.Errorf("marker source: %w", err)
	}
	markerMat := shader.NewMaterial(marker, shader.Copy{
		Offset: [2]float32{-0.97, -0.97},
		Scale:  [2]float32{0.015, 0.02},
		Color:  [4]float32{0.9, 0.9, 0.9, 1},
	})
	if _, err := d.markers.Insert(bucket.UnitDesc{
		Source:       triSrc,
		Binding:      markerMat,
		Visible:      true,
		Instances:    uint32(cols),
		BaseInstance: 1,
	}); err != nil {
		return fmt.Errorf("marker unit: %w", err)
	}

	return nil
}

func cellColor(i, cols, rows int) [4]float32 {
	col, row := i%cols, i/cols
	return [4]float32{
		0.3 + 0.7*float32(col)/float32(max(cols-1, 1)),
		0.3 + 0.7*float32(row)/float32(max(rows-1, 1)),
		0.6,
		0.85,
	}
}

// Run starts the main loop.
func (d *Demo) Run() error {
	d.running = true

	lastStep := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	var frame renderer.FrameStats

	d.log.Info("starting demo loop")

	for d.running {
		if d.input.Update() {
			break
		}
		if err := d.handle(d.input.Events()); err != nil {
			return err
		}

		if !d.paused && time.Since(lastStep) >= d.cfg.Demo.ToggleInterval {
			lastStep = time.Now()
			if _, err := d.grid.Step(); err != nil {
				return fmt.Errorf("step: %w", err)
			}
		}

		d.renderer.Begin()
		d.renderer.Draw(d.cells, d.cellState)
		d.renderer.Draw(d.markers, d.markerState)
		frame = d.renderer.End()

		// The back buffer is only defined until the swap
		if d.capture {
			d.capture = false
			if _, err := d.renderer.Screenshot("screenshots"); err != nil {
				d.log.Warn("screenshot failed", zap.Error(err))
			}
		}

		d.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := d.cells.Stats()
			d.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draws", frame.Draws),
				zap.Uint64("sweeps", st.Sweeps),
				zap.Uint64("sorts", st.Sorts),
			)
			d.window.SetTitle(fmt.Sprintf("%s - %d/%d visible, %d priority bits, %d fps",
				title, d.cells.VisibleLen(), d.cells.Len(), d.cells.PriorityBits(), frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (d *Demo) handle(events []input.Event) error {
	for _, e := range events {
		switch e.Action {
		case input.ActionQuit:
			d.running = false
		case input.ActionResize:
			d.renderer.Resize(e.Width, e.Height)
		case input.ActionPause:
			d.paused = !d.paused
			d.log.Info("pause toggled", zap.Bool("paused", d.paused))
		case input.ActionCyclePriorityBits:
			d.grid.CycleBits()
		case input.ActionShuffle:
			if err := d.grid.Shuffle(); err != nil {
				return err
			}
		case input.ActionScreenshot:
			d.capture = true
		case input.ActionStep:
			if _, err := d.grid.Step(); err != nil {
				return fmt.Errorf("step: %w", err)
			}
		}
	}
	return nil
}

// Close releases GL resources and the window.
func (d *Demo) Close() {
	d.log.Info("closing demo")

	for _, l := range d.layouts {
		l.Close()
	}
	for _, p := range d.programs {
		p.Close()
	}
	if d.renderer != nil {
		d.renderer.Close()
	}
	if d.window != nil {
		d.window.Close()
	}
}
