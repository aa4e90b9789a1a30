// Package shader compiles and links GLSL programs and caches their uniforms.
package shader

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/logger"
)

// ShaderCompileError reports a stage that failed to compile.
type ShaderCompileError struct {
	Path  string
	Stage gpu.ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("compiling %s shader %s: %s", e.Stage, e.Path, strings.TrimSpace(e.Log))
}

// ProgramLinkError reports a program that failed to link or validate.
type ProgramLinkError struct {
	Name string
	Log  string
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("linking program %s: %s", e.Name, strings.TrimSpace(e.Log))
}

// EmptyShaderSourceError reports a shader file with no source text.
type EmptyShaderSourceError struct {
	Path string
}

func (e *EmptyShaderSourceError) Error() string {
	return "empty shader source: " + e.Path
}

// Compile compiles one stage. path only labels diagnostics.
func Compile(dev gpu.Device, path string, stage gpu.ShaderStage, source string) (gpu.ShaderID, error) {
	if strings.TrimSpace(source) == "" {
		return 0, &EmptyShaderSourceError{Path: path}
	}

	id, log, ok := dev.CompileShader(stage, source)
	if !ok {
		return 0, &ShaderCompileError{Path: path, Stage: stage, Log: log}
	}

	logger.Debug("shader compiled", zap.String("path", path), zap.Stringer("stage", stage))
	return id, nil
}

// Link links the compiled stages into a program. The stages are deleted
// whether or not linking succeeds.
func Link(dev gpu.Device, name string, shaders ...gpu.ShaderID) (*Program, error) {
	id, log, ok := dev.LinkProgram(shaders)
	for _, s := range shaders {
		dev.DeleteShader(s)
	}
	if !ok {
		return nil, &ProgramLinkError{Name: name, Log: log}
	}

	logger.Debug("program linked", zap.String("program", name))
	return &Program{id: id, name: name, locs: make(map[string]gpu.UniformLocation)}, nil
}

// Load reads the stage files of src from fsys, injects defines after the
// #version line, then compiles and links them.
func Load(dev gpu.Device, fsys fs.FS, src Source, defines map[string]string) (*Program, error) {
	vert, err := compileFile(dev, fsys, src.Vertex, gpu.StageVertex, defines)
	if err != nil {
		return nil, err
	}
	frag, err := compileFile(dev, fsys, src.Fragment, gpu.StageFragment, defines)
	if err != nil {
		dev.DeleteShader(vert)
		return nil, err
	}
	return Link(dev, src.Name, vert, frag)
}

func compileFile(dev gpu.Device, fsys fs.FS, path string, stage gpu.ShaderStage, defines map[string]string) (gpu.ShaderID, error) {
	src, err := fs.ReadFile(fsys, path)
	if err != nil {
		return 0, fmt.Errorf("reading shader: %w", err)
	}
	text := string(src)
	if strings.TrimSpace(text) != "" {
		text = InjectDefines(text, defines)
	}
	return Compile(dev, path, stage, text)
}

// InjectDefines inserts a #define line per entry, sorted by name, right
// after the #version directive (or at the top when there is none).
func InjectDefines(source string, defines map[string]string) string {
	if len(defines) == 0 {
		return source
	}

	names := make([]string, 0, len(defines))
	for name := range defines {
		names = append(names, name)
	}
	sort.Strings(names)

	var block strings.Builder
	for _, name := range names {
		fmt.Fprintf(&block, "#define %s %s\n", name, defines[name])
	}

	trimmed := strings.TrimLeft(source, " \t\r\n")
	if !strings.HasPrefix(trimmed, "#version") {
		return block.String() + source
	}
	lead := len(source) - len(trimmed)
	end := strings.IndexByte(trimmed, '\n')
	if end < 0 {
		return source + "\n" + block.String()
	}
	cut := lead + end + 1
	return source[:cut] + block.String() + source[cut:]
}

// Program is a linked shader program. Uniform locations are resolved once
// and cached by name.
type Program struct {
	id   gpu.ProgramID
	name string
	locs map[string]gpu.UniformLocation
}

// ID returns the program handle.
func (p *Program) ID() gpu.ProgramID { return p.id }

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Use makes p the current program.
func (p *Program) Use(dev gpu.Device) {
	dev.UseProgram(p.id)
}

// Uniform returns the location of name, querying the device on first use.
// Inactive uniforms resolve to gpu.InactiveUniform, which every setter ignores.
func (p *Program) Uniform(dev gpu.Device, name string) gpu.UniformLocation {
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	loc := dev.UniformLocation(p.id, name)
	if loc == gpu.InactiveUniform {
		logger.Debug("inactive uniform", zap.String("program", p.name), zap.String("uniform", name))
	}
	p.locs[name] = loc
	return loc
}

// Release deletes the program. It is safe to call more than once.
func (p *Program) Release(dev gpu.Device) {
	if p.id == 0 {
		return
	}
	dev.DeleteProgram(p.id)
	p.id = 0
}
