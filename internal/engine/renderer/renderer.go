// Package renderer provides the OpenGL side of bucket dispatch: vertex
// layouts, pipeline state and frame management.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.2-core/gl"

	"github.com/Faultbox/drawbucket/internal/engine/bucket"
	"github.com/Faultbox/drawbucket/internal/engine/shader"
	"github.com/Faultbox/drawbucket/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	Clear  [4]float32
}

// Renderer owns the frame: it clears, dispatches buckets and counts draws.
type Renderer struct {
	config Config
	log    *zap.Logger

	baseInstance bool

	frame FrameStats
}

// FrameStats counts what the last frame dispatched.
type FrameStats struct {
	Buckets int
	Draws   int
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	r.baseInstance = major > 4 || (major == 4 && minor >= 2)

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Bool("base_instance", r.baseInstance),
	)

	c := cfg.Clear
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// BaseInstance reports whether the context supports base-instance draws.
func (r *Renderer) BaseInstance() bool {
	return r.baseInstance
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.frame = FrameStats{}
	shader.Forget()
	bound = 0
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw dispatches every visible unit of b with state p.
func (r *Renderer) Draw(b *bucket.Bucket, p *Pipeline) int {
	n := b.Process(p)
	r.frame.Buckets++
	r.frame.Draws += n
	return n
}

// End finishes the current frame.
func (r *Renderer) End() FrameStats {
	gl.BindVertexArray(0)
	bound = 0
	return r.frame
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	gl.UseProgram(0)
	shader.Forget()
}
