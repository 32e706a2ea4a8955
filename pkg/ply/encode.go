package ply

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Encoder validation errors.
var (
	ErrUnsupportedPrimitive  = errors.New("expected a triangle mesh")
	ErrTwoComponentPositions = errors.New("two-component positions are not supported")
	ErrInvalidByteOrder      = errors.New("invalid byte order option")
)

// ByteOrder selects the byte order of an encoded file.
type ByteOrder uint8

// Byte order options.
const (
	NativeOrder ByteOrder = iota
	LittleEndianOrder
	BigEndianOrder
)

// ParseByteOrder resolves a configuration value to a byte order.
// Accepted values are "native", "little" and "big".
func ParseByteOrder(s string) (ByteOrder, error) {
	switch s {
	case "native":
		return NativeOrder, nil
	case "little":
		return LittleEndianOrder, nil
	case "big":
		return BigEndianOrder, nil
	}
	return NativeOrder, fmt.Errorf("%w %q", ErrInvalidByteOrder, s)
}

// littleEndian resolves the option against the host order.
func (b ByteOrder) littleEndian() bool {
	switch b {
	case LittleEndianOrder:
		return true
	case BigEndianOrder:
		return false
	default:
		return hostLittleEndian
	}
}

// EncodeOptions control the encoder output.
type EncodeOptions struct {
	// ByteOrder of the encoded body, default host order.
	ByteOrder ByteOrder

	// ObjectIDAttribute is the property name object ID attributes are
	// written under.
	ObjectIDAttribute string

	// Log receives skipped-attribute warnings; nil means no logging.
	Log *zap.Logger
}

// DefaultEncodeOptions returns the default encode options.
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{ObjectIDAttribute: "object_id"}
}

// Encode serializes a mesh into a conformant binary PLY file. Strips
// and fans are expanded to a triangle list first. Attributes the
// format cannot express are skipped with a warning; an unindexed mesh
// gets a generated sequential index buffer using the narrowest type
// that covers its vertex count.
func Encode(mesh *Mesh, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	objectIDName := opts.ObjectIDAttribute
	if objectIDName == "" {
		objectIDName = "object_id"
	}

	indices, indexType, err := triangleIndices(mesh)
	if err != nil {
		return nil, err
	}
	triCount := len(indices) / 3

	little := opts.ByteOrder.littleEndian()
	order := fileOrder(little)

	// Header; role names are the reverse of the decoder's name table.
	var h strings.Builder
	h.WriteString("ply\n")
	if little {
		h.WriteString("format binary_little_endian 1.0\n")
	} else {
		h.WriteString("format binary_big_endian 1.0\n")
	}
	fmt.Fprintf(&h, "element vertex %d\n", mesh.VertexCount)

	offsets := make([]int, len(mesh.Attributes))
	vertexSize := 0
	for i := range mesh.Attributes {
		a := &mesh.Attributes[i]
		offsets[i] = -1

		token := a.Format.Type.String()
		if a.Format.Type == TypeInvalid {
			log.Warn("skipping attribute with unsupported format",
				zap.String("attribute", attributeLabel(a)),
				zap.String("format", a.Format.String()))
			continue
		}

		switch a.Role {
		case RolePosition:
			if a.Format.Count != 3 {
				return nil, ErrTwoComponentPositions
			}
			fmt.Fprintf(&h, "property %[1]s x\nproperty %[1]s y\nproperty %[1]s z\n", token)
		case RoleNormal:
			fmt.Fprintf(&h, "property %[1]s nx\nproperty %[1]s ny\nproperty %[1]s nz\n", token)
		case RoleTextureCoordinate:
			fmt.Fprintf(&h, "property %[1]s u\nproperty %[1]s v\n", token)
		case RoleColor:
			fmt.Fprintf(&h, "property %[1]s red\nproperty %[1]s green\nproperty %[1]s blue\n", token)
			if a.Format.Count == 4 {
				fmt.Fprintf(&h, "property %s alpha\n", token)
			}
		case RoleObjectID:
			fmt.Fprintf(&h, "property %s %s\n", token, objectIDName)
		default:
			log.Warn("skipping unsupported attribute",
				zap.String("attribute", attributeLabel(a)),
				zap.String("format", a.Format.String()))
			continue
		}

		offsets[i] = vertexSize
		vertexSize += a.Format.Size()
	}

	fmt.Fprintf(&h, "element face %d\n", triCount)
	fmt.Fprintf(&h, "property list uchar %s vertex_indices\n", indexType)
	h.WriteString("end_header\n")

	indexW := indexType.Size()
	faceRow := 1 + 3*indexW
	out := make([]byte, h.Len()+vertexSize*mesh.VertexCount+triCount*faceRow)
	copy(out, h.String())

	// Tightly packed vertex rows, converted component-wise into the
	// target byte order.
	vertexData := out[h.Len() : h.Len()+vertexSize*mesh.VertexCount]
	for i := range mesh.Attributes {
		if offsets[i] < 0 {
			continue
		}
		a := &mesh.Attributes[i]
		width := a.Format.Type.Size()
		for row := 0; row < mesh.VertexCount; row++ {
			src := mesh.VertexData[a.Offset+row*a.Stride:]
			dst := vertexData[offsets[i]+row*vertexSize:]
			for c := 0; c < a.Format.Count; c++ {
				putComponent(dst[c*width:], src[c*width:], width, order)
			}
		}
	}

	// Face rows: a fixed size byte of 3 followed by three indices.
	indexData := out[h.Len()+vertexSize*mesh.VertexCount:]
	for t := 0; t < triCount; t++ {
		row := indexData[t*faceRow:]
		row[0] = 3
		for j := 0; j < 3; j++ {
			v := indices[3*t+j]
			switch indexType {
			case IndexUint8:
				row[1+j] = byte(v)
			case IndexUint16:
				order.PutUint16(row[1+2*j:], uint16(v))
			case IndexUint32:
				order.PutUint32(row[1+4*j:], v)
			}
		}
	}

	return out, nil
}

// triangleIndices expands the mesh topology into a flat triangle-list
// index buffer, reproducing the triangles a rasterizer would draw.
// The index type is preserved for indexed meshes and chosen as the
// narrowest type covering the vertex count otherwise.
func triangleIndices(mesh *Mesh) ([]uint32, IndexType, error) {
	indexType := mesh.IndexType
	n := mesh.VertexCount
	at := func(i int) uint32 { return uint32(i) }
	if mesh.Indexed() {
		n = mesh.IndexCount()
		at = mesh.Index
	} else {
		indexType = narrowestIndexType(mesh.VertexCount)
	}

	var indices []uint32
	switch mesh.Primitive {
	case Triangles:
		indices = make([]uint32, 0, n-n%3)
		for i := 0; i+2 < n; i += 3 {
			indices = append(indices, at(i), at(i+1), at(i+2))
		}
	case TriangleFan:
		// (0, i, i+1)
		for i := 1; i+1 < n; i++ {
			indices = append(indices, at(0), at(i), at(i+1))
		}
	case TriangleStrip:
		// Alternating winding so every triangle faces the same way.
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				indices = append(indices, at(i), at(i+1), at(i+2))
			} else {
				indices = append(indices, at(i+1), at(i), at(i+2))
			}
		}
	default:
		return nil, IndexInvalid, fmt.Errorf("%w, got %s", ErrUnsupportedPrimitive, mesh.Primitive)
	}
	return indices, indexType, nil
}

// narrowestIndexType returns the smallest index type whose range
// covers count vertices.
func narrowestIndexType(count int) IndexType {
	switch {
	case count <= 1<<8:
		return IndexUint8
	case count <= 1<<16:
		return IndexUint16
	default:
		return IndexUint32
	}
}

// putComponent writes one width-byte component read from src in host
// order into dst in the target order.
func putComponent(dst, src []byte, width int, order binary.ByteOrder) {
	switch width {
	case 1:
		dst[0] = src[0]
	case 2:
		order.PutUint16(dst, binary.NativeEndian.Uint16(src))
	case 4:
		order.PutUint32(dst, binary.NativeEndian.Uint32(src))
	case 8:
		order.PutUint64(dst, binary.NativeEndian.Uint64(src))
	}
}

func attributeLabel(a *Attribute) string {
	if a.Role == RoleCustom {
		return a.Name
	}
	return a.Role.String()
}
