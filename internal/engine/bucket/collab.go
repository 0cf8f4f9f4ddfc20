package bucket

import "strings"

// Range is a draw sub-range of a vertex layout: vertices for plain layouts,
// indices for indexed ones.
type Range struct {
	First uint32
	Count uint32
}

// Layout is the geometry collaborator a Source borrows. The Bucket never
// frees it.
type Layout interface {
	// LayoutID identifies the vertex layout for state-change ordering.
	LayoutID() uint32
	// Indexed reports whether draws go through an index buffer.
	Indexed() bool
	// Draw issues exactly one draw call.
	Draw(rng Range, instances, baseInstance uint32, vertexBase int32, v Variant)
}

// Binding is the shading collaborator a unit borrows. Bind makes the program
// and the uniform copy current before the unit is drawn.
type Binding interface {
	ProgramID() uint32
	Bind(copyIndex, baseInstance uint32)
}

// RenderState is applied once per Process, before any unit is drawn.
type RenderState interface {
	Apply()
}

// Variant is the resolved shape of a unit's draw call.
type Variant uint8

const (
	VariantIndexed Variant = 1 << iota
	VariantInstanced
	VariantBaseInstance
)

// DrawPlain is a non-indexed, non-instanced draw.
const DrawPlain Variant = 0

// Indexed reports whether the draw reads an index buffer.
func (v Variant) Indexed() bool { return v&VariantIndexed != 0 }

// Instanced reports whether the draw is an instanced one.
func (v Variant) Instanced() bool { return v&VariantInstanced != 0 }

// BaseInstance reports whether the base instance goes to the draw call
// rather than only to the binding.
func (v Variant) BaseInstance() bool { return v&VariantBaseInstance != 0 }

func (v Variant) String() string {
	if v == DrawPlain {
		return "plain"
	}
	var parts []string
	if v.Indexed() {
		parts = append(parts, "indexed")
	}
	if v.Instanced() {
		parts = append(parts, "instanced")
	}
	if v.BaseInstance() {
		parts = append(parts, "base-instance")
	}
	return strings.Join(parts, "+")
}

// resolveVariant picks the draw shape. Without base-instance support the
// base instance only reaches the binding, which is expected to offset its
// per-instance data itself.
func resolveVariant(indexed bool, instances, baseInstance uint32, baseSupported bool) Variant {
	var v Variant
	if indexed {
		v |= VariantIndexed
	}
	if instances != 1 || baseInstance != 0 {
		v |= VariantInstanced
	}
	if baseInstance != 0 && baseSupported {
		v |= VariantBaseInstance
	}
	return v
}
