// Package fire draws the effect with the GLSL compositor over the uploaded
// noise lattice.
package fire

import (
	"fmt"

	"fire-smoke/internal/compositor"
	"fire-smoke/internal/graphics"
	renderer "fire-smoke/internal/graphics/renderer"
	"fire-smoke/internal/noise"
	"fire-smoke/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Fire is the GPU compositing pass.
type Fire struct {
	lattice *noise.Lattice
	params  compositor.Params

	shader   *graphics.Shader
	quad     *graphics.Quad
	noiseTex uint32
}

func NewFire(l *noise.Lattice, p compositor.Params) *Fire {
	return &Fire{lattice: l, params: p}
}

// Init compiles the program, uploads the lattice and binds the tuning
// uniforms, which stay fixed for the life of the pass.
func (f *Fire) Init() error {
	shader, err := graphics.NewShader(compositor.VertexSource, compositor.FragmentSource())
	if err != nil {
		return fmt.Errorf("fire shader: %w", err)
	}
	tex, err := graphics.UploadLattice(f.lattice)
	if err != nil {
		shader.Delete()
		return err
	}

	f.shader = shader
	f.noiseTex = tex
	f.quad = graphics.NewQuad()

	f.shader.Use()
	f.shader.SetInt("noiseTex", 0)
	f.SetParams(f.params)
	return nil
}

// SetParams rebinds every tuning uniform.
func (f *Fire) SetParams(p compositor.Params) {
	f.params = p
	f.shader.Use()
	for _, u := range p.Uniforms() {
		v := u.Values
		switch u.Kind {
		case compositor.UniformFloat:
			f.shader.SetFloat(u.Name, v[0])
		case compositor.UniformInt:
			f.shader.SetInt(u.Name, int32(v[0]))
		case compositor.UniformBool:
			f.shader.SetBool(u.Name, v[0] != 0)
		case compositor.UniformVec2:
			f.shader.SetVector2(u.Name, v[0], v[1])
		case compositor.UniformVec3:
			f.shader.SetVector3(u.Name, v[0], v[1], v[2])
		}
	}
}

func (f *Fire) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.fire")()

	f.shader.Use()
	f.shader.SetFloat("time", ctx.Frame.Time)
	f.shader.SetFloat("speed", ctx.Frame.Speed)
	f.shader.SetInt("colorMode", int32(ctx.Frame.Mode))

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_3D, f.noiseTex)
	f.quad.Draw()
	gl.BindTexture(gl.TEXTURE_3D, 0)
}

func (f *Fire) Dispose() {
	if f.shader == nil {
		return
	}
	f.quad.Delete()
	gl.DeleteTextures(1, &f.noiseTex)
	f.shader.Delete()
	f.shader = nil
}

// SetViewport is a no-op; the quad covers whatever viewport is current.
func (f *Fire) SetViewport(width, height int) {}
