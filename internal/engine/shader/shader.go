// Package shader provides OpenGL program compilation and the material
// bindings units draw with.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.2-core/gl"
)

// Program is a linked GL program together with the uniform locations a
// Material writes. Missing uniforms stay at -1 and are skipped.
type Program struct {
	ID uint32

	locOffset       int32
	locScale        int32
	locColor        int32
	locBaseInstance int32
}

// current is the program last made current through use.
var current uint32

// Compile compiles vertex and fragment sources and links them into a Program.
func Compile(vertexSrc, fragmentSrc string) (*Program, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fragShader)

	id := gl.CreateProgram()
	gl.AttachShader(id, vertShader)
	gl.AttachShader(id, fragShader)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(id, logLen, nil, &log[0])
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("link: %s", string(log))
	}

	return &Program{
		ID:              id,
		locOffset:       GetUniform(id, "uOffset"),
		locScale:        GetUniform(id, "uScale"),
		locColor:        GetUniform(id, "uColor"),
		locBaseInstance: GetUniform(id, "uBaseInstance"),
	}, nil
}

// use makes p current unless it already is.
func (p *Program) use() {
	if current == p.ID {
		return
	}
	gl.UseProgram(p.ID)
	current = p.ID
}

// Close deletes the GL program.
func (p *Program) Close() {
	if p.ID == 0 {
		return
	}
	if current == p.ID {
		current = 0
	}
	gl.DeleteProgram(p.ID)
	p.ID = 0
}

// Forget drops the cached current program. Call it after code outside this
// package changed the bound program.
func Forget() {
	current = 0
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// GetUniform returns the uniform location for the given name, or -1 if the
// uniform is not found or inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// MustGetUniform returns the uniform location for the given name.
// Panics if the uniform is not found (useful for required uniforms).
func MustGetUniform(program uint32, name string) int32 {
	loc := GetUniform(program, name)
	if loc < 0 {
		panic(fmt.Sprintf("uniform %q not found in program %d", name, program))
	}
	return loc
}
