package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.2-core/gl"

	"github.com/Faultbox/drawbucket/internal/engine/bucket"
)

// Attrib describes one float vertex attribute inside an interleaved buffer.
type Attrib struct {
	Location uint32
	Size     int32 // components
	Offset   int   // bytes
}

// VertexLayout owns a vertex array object, its vertex buffer and an
// optional index buffer. It implements bucket.Layout.
type VertexLayout struct {
	vao  uint32
	vbo  uint32
	ebo  uint32
	mode uint32
}

// bound is the vertex array last bound through a VertexLayout.
var bound uint32

// NewVertexLayout uploads vertices (stride bytes per vertex) and, when
// indices is non-empty, a 32-bit index buffer. mode is the primitive type,
// e.g. gl.TRIANGLES.
func NewVertexLayout(mode uint32, vertices []float32, stride int, attribs []Attrib, indices []uint32) *VertexLayout {
	l := &VertexLayout{mode: mode}

	gl.GenVertexArrays(1, &l.vao)
	gl.BindVertexArray(l.vao)
	bound = l.vao

	gl.GenBuffers(1, &l.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	for _, a := range attribs {
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, int32(stride), uintptr(a.Offset))
		gl.EnableVertexAttribArray(a.Location)
	}

	if len(indices) > 0 {
		gl.GenBuffers(1, &l.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, l.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	}

	return l
}

// LayoutID returns the vertex array name.
func (l *VertexLayout) LayoutID() uint32 { return l.vao }

// Indexed reports whether the layout has an index buffer.
func (l *VertexLayout) Indexed() bool { return l.ebo != 0 }

// Draw issues the draw call matching v.
func (l *VertexLayout) Draw(rng bucket.Range, instances, baseInstance uint32, vertexBase int32, v bucket.Variant) {
	if bound != l.vao {
		gl.BindVertexArray(l.vao)
		bound = l.vao
	}

	first, count := int32(rng.First), int32(rng.Count)
	n := int32(instances)
	offset := gl.PtrOffset(int(rng.First) * 4)

	switch kindOf(v) {
	case drawArrays:
		gl.DrawArrays(l.mode, first, count)
	case drawArraysInstanced:
		gl.DrawArraysInstanced(l.mode, first, count, n)
	case drawArraysInstancedBase:
		gl.DrawArraysInstancedBaseInstance(l.mode, first, count, n, baseInstance)
	case drawElements:
		gl.DrawElementsBaseVertex(l.mode, count, gl.UNSIGNED_INT, offset, vertexBase)
	case drawElementsInstanced:
		gl.DrawElementsInstancedBaseVertex(l.mode, count, gl.UNSIGNED_INT, offset, n, vertexBase)
	case drawElementsInstancedBase:
		gl.DrawElementsInstancedBaseVertexBaseInstance(l.mode, count, gl.UNSIGNED_INT, offset, n, vertexBase, baseInstance)
	}
}

// Close deletes the GL objects.
func (l *VertexLayout) Close() {
	if bound == l.vao {
		gl.BindVertexArray(0)
		bound = 0
	}
	if l.ebo != 0 {
		gl.DeleteBuffers(1, &l.ebo)
	}
	if l.vbo != 0 {
		gl.DeleteBuffers(1, &l.vbo)
	}
	if l.vao != 0 {
		gl.DeleteVertexArrays(1, &l.vao)
	}
	l.vao, l.vbo, l.ebo = 0, 0, 0
}

// drawKind names the GL entry point a variant maps to.
type drawKind int

const (
	drawArrays drawKind = iota
	drawArraysInstanced
	drawArraysInstancedBase
	drawElements
	drawElementsInstanced
	drawElementsInstancedBase
)

var drawKindNames = [...]string{
	drawArrays:                "DrawArrays",
	drawArraysInstanced:       "DrawArraysInstanced",
	drawArraysInstancedBase:   "DrawArraysInstancedBaseInstance",
	drawElements:              "DrawElementsBaseVertex",
	drawElementsInstanced:     "DrawElementsInstancedBaseVertex",
	drawElementsInstancedBase: "DrawElementsInstancedBaseVertexBaseInstance",
}

func (k drawKind) String() string { return drawKindNames[k] }

func kindOf(v bucket.Variant) drawKind {
	k := drawArrays
	if v.Indexed() {
		k = drawElements
	}
	switch {
	case v.BaseInstance():
		k += 2
	case v.Instanced():
		k++
	}
	return k
}
