package ply

import (
	"encoding/binary"
	"math"
)

// Primitive identifies the topology of a mesh index buffer.
type Primitive uint8

// Mesh primitives.
const (
	Triangles Primitive = iota
	TriangleStrip
	TriangleFan
)

// String returns a human-readable primitive name.
func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle strip"
	case TriangleFan:
		return "triangle fan"
	default:
		return "unknown"
	}
}

// Attribute describes one attribute inside an interleaved buffer.
// Offset and Stride are in bytes; the attribute value of row i starts
// at Offset + i*Stride.
type Attribute struct {
	Role   Role
	Name   string // custom attribute name, empty for recognized roles
	Format Format
	Offset int
	Stride int
}

// Mesh is a decoded triangle mesh: an interleaved vertex buffer with
// attribute views and an optional packed index buffer. Buffers are in
// host byte order and fully owned by the mesh.
type Mesh struct {
	Primitive   Primitive
	IndexType   IndexType // IndexInvalid when non-indexed
	Indices     []byte
	VertexCount int
	VertexData  []byte
	Attributes  []Attribute
}

// FaceAttributes is the per-triangle-face attribute view of a
// document, available when per-face promotion is disabled.
type FaceAttributes struct {
	TriangleCount int
	Data          []byte
	Attributes    []Attribute
}

// Indexed returns true if the mesh carries an index buffer.
func (m *Mesh) Indexed() bool {
	return m.IndexType != IndexInvalid
}

// IndexCount returns the number of indices in the index buffer.
func (m *Mesh) IndexCount() int {
	if !m.Indexed() {
		return 0
	}
	return len(m.Indices) / m.IndexType.Size()
}

// Index returns the i-th index value.
func (m *Mesh) Index(i int) uint32 {
	return readIndex(m.Indices, m.IndexType, i)
}

// TriangleCount returns the number of triangles the mesh draws.
func (m *Mesh) TriangleCount() int {
	n := m.VertexCount
	if m.Indexed() {
		n = m.IndexCount()
	}
	switch m.Primitive {
	case Triangles:
		return n / 3
	case TriangleStrip, TriangleFan:
		if n < 3 {
			return 0
		}
		return n - 2
	default:
		return 0
	}
}

// FindAttribute returns the first attribute with the given role, or
// nil if the mesh has none.
func (m *Mesh) FindAttribute(role Role) *Attribute {
	for i := range m.Attributes {
		if m.Attributes[i].Role == role {
			return &m.Attributes[i]
		}
	}
	return nil
}

// FindCustomAttribute returns the custom attribute with the given
// name, or nil if the mesh has none.
func (m *Mesh) FindCustomAttribute(name string) *Attribute {
	for i := range m.Attributes {
		if m.Attributes[i].Role == RoleCustom && m.Attributes[i].Name == name {
			return &m.Attributes[i]
		}
	}
	return nil
}

// Float32At reads component c of the attribute value in row i.
// The attribute component type must be TypeFloat32.
func (m *Mesh) Float32At(a *Attribute, i, c int) float32 {
	return float32At(m.VertexData, a, i, c)
}

// UintAt reads component c of the attribute value in row i as an
// unsigned integer, for any integer component type.
func (m *Mesh) UintAt(a *Attribute, i, c int) uint32 {
	return uintAt(m.VertexData, a, i, c)
}

// Float32At reads component c of the face attribute value for
// triangle i. The attribute component type must be TypeFloat32.
func (f *FaceAttributes) Float32At(a *Attribute, i, c int) float32 {
	return float32At(f.Data, a, i, c)
}

// UintAt reads component c of the face attribute value for triangle i
// as an unsigned integer.
func (f *FaceAttributes) UintAt(a *Attribute, i, c int) uint32 {
	return uintAt(f.Data, a, i, c)
}

// FindAttribute returns the first face attribute with the given role,
// or nil.
func (f *FaceAttributes) FindAttribute(role Role) *Attribute {
	for i := range f.Attributes {
		if f.Attributes[i].Role == role {
			return &f.Attributes[i]
		}
	}
	return nil
}

func float32At(data []byte, a *Attribute, i, c int) float32 {
	off := a.Offset + i*a.Stride + c*a.Format.Type.Size()
	return math.Float32frombits(binary.NativeEndian.Uint32(data[off:]))
}

func uintAt(data []byte, a *Attribute, i, c int) uint32 {
	off := a.Offset + i*a.Stride + c*a.Format.Type.Size()
	switch a.Format.Type.Size() {
	case 1:
		return uint32(data[off])
	case 2:
		return uint32(binary.NativeEndian.Uint16(data[off:]))
	case 4:
		return binary.NativeEndian.Uint32(data[off:])
	default:
		return 0
	}
}

// readIndex reads the i-th value of a packed host-order index buffer.
func readIndex(indices []byte, t IndexType, i int) uint32 {
	switch t {
	case IndexUint8:
		return uint32(indices[i])
	case IndexUint16:
		return uint32(binary.NativeEndian.Uint16(indices[2*i:]))
	case IndexUint32:
		return binary.NativeEndian.Uint32(indices[4*i:])
	default:
		return 0
	}
}

// putIndex writes the i-th value of a packed host-order index buffer.
func putIndex(indices []byte, t IndexType, i int, v uint32) {
	switch t {
	case IndexUint8:
		indices[i] = byte(v)
	case IndexUint16:
		binary.NativeEndian.PutUint16(indices[2*i:], uint16(v))
	case IndexUint32:
		binary.NativeEndian.PutUint32(indices[4*i:], v)
	}
}
