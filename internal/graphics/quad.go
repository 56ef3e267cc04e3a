package graphics

import "github.com/go-gl/gl/v4.1-core/gl"

// QuadVertices is a full-screen quad in clip space as a triangle strip.
var QuadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// Quad draws QuadVertices with attribute 0 as vec2 position.
type Quad struct {
	vao uint32
	vbo uint32
}

func NewQuad() *Quad {
	q := &Quad{}
	gl.GenVertexArrays(1, &q.vao)
	gl.GenBuffers(1, &q.vbo)
	gl.BindVertexArray(q.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(QuadVertices)*4, gl.Ptr(QuadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return q
}

func (q *Quad) Draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

func (q *Quad) Delete() {
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
}
