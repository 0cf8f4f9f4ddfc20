package renderer

import "github.com/go-gl/gl/v4.2-core/gl"

// Pipeline is the fixed-function state a bucket draws with. It implements
// bucket.RenderState.
type Pipeline struct {
	DepthTest bool
	Blend     bool
	CullFace  bool
}

// Apply sets the GL state.
func (p *Pipeline) Apply() {
	toggle(gl.DEPTH_TEST, p.DepthTest)
	toggle(gl.BLEND, p.Blend)
	toggle(gl.CULL_FACE, p.CullFace)
	if p.Blend {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	if p.DepthTest {
		gl.DepthFunc(gl.LEQUAL)
	}
}

func toggle(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}
