package mesh

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/logger"
)

// Mesh is an uploaded triangle list. It exclusively owns its vertex array
// and buffers until Release.
type Mesh struct {
	vao gpu.VertexArrayID
	vbo gpu.BufferID
	ebo gpu.BufferID

	indexCount int32
	ranges     []Range
	bounds     Bounds
}

// New validates data and uploads it. No GPU object is created when the
// data is invalid.
func New(dev gpu.Device, data Data) (*Mesh, error) {
	if err := data.Validate(-1); err != nil {
		return nil, err
	}

	m := &Mesh{
		indexCount: int32(len(data.Indices)),
		ranges:     append([]Range(nil), data.Ranges...),
		bounds:     data.Bounds(),
	}

	m.vao = dev.CreateVertexArray()
	dev.BindVertexArray(m.vao)

	m.vbo = dev.CreateBuffer(gpu.ArrayBuffer, vertexBytes(data.Vertices))
	for _, a := range Layout {
		dev.VertexAttrib(a.Location, a.Components, Stride, a.Offset)
	}
	m.ebo = dev.CreateBuffer(gpu.ElementArrayBuffer, indexBytes(data.Indices))

	dev.BindVertexArray(0)

	logger.Debug("mesh uploaded",
		zap.Int("vertices", len(data.Vertices)),
		zap.Int("indices", len(data.Indices)),
		zap.Int("ranges", len(data.Ranges)))

	return m, nil
}

// Draw issues one indexed draw over every index.
func (m *Mesh) Draw(dev gpu.Device) {
	dev.BindVertexArray(m.vao)
	dev.DrawElements(m.indexCount, 0)
}

// DrawRange issues an indexed draw over one material range.
func (m *Mesh) DrawRange(dev gpu.Device, r Range) {
	dev.BindVertexArray(m.vao)
	dev.DrawElements(r.Count, r.Start)
}

// Ranges returns the material ranges. A mesh without material partitioning
// reports a single range covering every index with material id 0.
func (m *Mesh) Ranges() []Range {
	if len(m.ranges) == 0 {
		return []Range{{MaterialID: 0, Start: 0, Count: m.indexCount}}
	}
	return m.ranges
}

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int32 { return m.indexCount }

// Bounds returns the object-space bounding box.
func (m *Mesh) Bounds() Bounds { return m.bounds }

// VertexArray returns the vertex array handle.
func (m *Mesh) VertexArray() gpu.VertexArrayID { return m.vao }

// Release deletes the GPU objects. It is safe to call more than once.
func (m *Mesh) Release(dev gpu.Device) {
	if m.vao == 0 {
		return
	}
	dev.DeleteBuffer(m.ebo)
	dev.DeleteBuffer(m.vbo)
	dev.DeleteVertexArray(m.vao)
	m.vao, m.vbo, m.ebo = 0, 0, 0
}

func vertexBytes(v []Vertex) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(Stride))
}

func indexBytes(idx []uint32) []byte {
	if len(idx) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&idx[0])), len(idx)*4)
}
