// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// CellVertexShader places a unit quad at the cell's offset and scale.
//
//go:embed cell.vert
var CellVertexShader string

// SolidFragmentShader fills with the copy's color.
//
//go:embed solid.frag
var SolidFragmentShader string

// StripeFragmentShader fills with horizontal stripes of the copy's color.
//
//go:embed stripe.frag
var StripeFragmentShader string

// MarkerVertexShader lays instances out in a row, offset by uBaseInstance.
//
//go:embed marker.vert
var MarkerVertexShader string
