package shader

import (
	"github.com/go-gl/gl/v4.2-core/gl"
)

// Copy is one set of uniform values of a Material. Units select a copy by
// index, so many units can share a program and differ only in uniforms.
type Copy struct {
	Offset [2]float32
	Scale  [2]float32
	Color  [4]float32
}

// Material binds a Program with one of its uniform copies. It implements
// bucket.Binding.
type Material struct {
	program *Program
	copies  []Copy
}

// NewMaterial creates a material drawing with p.
func NewMaterial(p *Program, copies ...Copy) *Material {
	return &Material{program: p, copies: copies}
}

// AddCopy appends a uniform copy and returns its index.
func (m *Material) AddCopy(c Copy) uint32 {
	m.copies = append(m.copies, c)
	return uint32(len(m.copies) - 1)
}

// SetCopy overwrites the copy at index i.
func (m *Material) SetCopy(i uint32, c Copy) {
	m.copies[i] = c
}

// Copies returns the number of uniform copies.
func (m *Material) Copies() int {
	return len(m.copies)
}

// ProgramID returns the GL program the material draws with.
func (m *Material) ProgramID() uint32 {
	return m.program.ID
}

// Bind makes the program current and uploads copy copyIndex. The base
// instance always goes to uBaseInstance so shaders can offset per-instance
// data on contexts without base-instance draws.
func (m *Material) Bind(copyIndex, baseInstance uint32) {
	p := m.program
	p.use()

	if int(copyIndex) < len(m.copies) {
		c := &m.copies[copyIndex]
		if p.locOffset >= 0 {
			gl.Uniform2f(p.locOffset, c.Offset[0], c.Offset[1])
		}
		if p.locScale >= 0 {
			gl.Uniform2f(p.locScale, c.Scale[0], c.Scale[1])
		}
		if p.locColor >= 0 {
			gl.Uniform4f(p.locColor, c.Color[0], c.Color[1], c.Color[2], c.Color[3])
		}
	}
	if p.locBaseInstance >= 0 {
		gl.Uniform1i(p.locBaseInstance, int32(baseInstance))
	}
}
