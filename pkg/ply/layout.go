package ply

import (
	"errors"
	"fmt"
	"strings"
)

// Layout invariant errors.
var (
	ErrIncompleteVertexSpec = errors.New("incomplete vertex specification")
	ErrIncompleteFaceSpec   = errors.New("incomplete face specification")
	ErrInvalidLayout        = errors.New("invalid attribute layout")
	ErrUnsupportedType      = errors.New("unsupported component type")
)

// layout is the planned per-row memory layout of a document: byte
// offsets and strides for every attribute, plus the face row split
// around the variable-length index list.
type layout struct {
	vertexCount  int
	vertexStride int

	faceCount     int
	faceLead      int // fixed-size face bytes before the index list
	faceTrail     int // fixed-size face bytes after the index list
	faceSizeType  IndexType
	faceIndexType IndexType

	vertexAttrs []Attribute
	faceAttrs   []Attribute // offsets into the compacted lead+trail row

	// Append-only interning table for custom attribute names, shared
	// between vertex and face scope.
	names   []string
	nameIDs map[string]int
}

// vecSlots collects the component type and byte offset of each
// component of a multi-component role as properties are encountered.
type vecSlots struct {
	typ [4]ComponentType
	off [4]int
}

func newVecSlots() vecSlots {
	return vecSlots{off: [4]int{-1, -1, -1, -1}}
}

func (s *vecSlots) set(i int, t ComponentType, off int) {
	s.typ[i] = t
	s.off[i] = off
}

// any returns true if at least one of the first n components was seen.
func (s *vecSlots) any(n int) bool {
	for i := 0; i < n; i++ {
		if s.off[i] >= 0 {
			return true
		}
	}
	return false
}

// all returns true if all of the first n components were seen.
func (s *vecSlots) all(n int) bool {
	for i := 0; i < n; i++ {
		if s.off[i] < 0 {
			return false
		}
	}
	return true
}

// planLayout assigns semantic roles to the schema's properties and
// computes offsets and strides. objectIDName is the property name
// recognized as the object ID attribute.
func planLayout(h *header, objectIDName string) (*layout, error) {
	l := &layout{nameIDs: make(map[string]int)}

	var (
		positions, normals, texCoords, colors vecSlots
		objectIDType                          ComponentType
		objectIDOffset                        = -1

		faceNormals, faceColors vecSlots
		faceObjectIDType        ComponentType
		faceObjectIDOffset      = -1

		haveFaceList bool
	)
	positions, normals, texCoords, colors = newVecSlots(), newVecSlots(), newVecSlots(), newVecSlots()
	faceNormals, faceColors = newVecSlots(), newVecSlots()

	for _, e := range h.elements {
		switch e.kind {
		case elementVertex:
			l.vertexCount = e.count
			offset := 0
			for _, p := range e.props {
				switch p.name {
				case "x":
					positions.set(0, p.typ, offset)
				case "y":
					positions.set(1, p.typ, offset)
				case "z":
					positions.set(2, p.typ, offset)
				case "nx":
					normals.set(0, p.typ, offset)
				case "ny":
					normals.set(1, p.typ, offset)
				case "nz":
					normals.set(2, p.typ, offset)
				// LuxBlend uses s/t, Mitsuba uses u/v.
				case "u", "s":
					texCoords.set(0, p.typ, offset)
				case "v", "t":
					texCoords.set(1, p.typ, offset)
				case "red":
					colors.set(0, p.typ, offset)
				case "green":
					colors.set(1, p.typ, offset)
				case "blue":
					colors.set(2, p.typ, offset)
				case "alpha":
					colors.set(3, p.typ, offset)
				case objectIDName:
					objectIDType = p.typ
					objectIDOffset = offset
				default:
					l.vertexAttrs = append(l.vertexAttrs, Attribute{
						Role:   RoleCustom,
						Name:   p.name,
						Format: Format{Type: p.typ, Count: 1},
						Offset: offset,
					})
					l.intern(p.name)
				}
				offset += p.typ.Size()
			}
			l.vertexStride = offset

		case elementFace:
			l.faceCount = e.count
			for _, p := range e.props {
				if p.list {
					haveFaceList = true
					l.faceSizeType = p.sizeType
					l.faceIndexType = p.indexType
					continue
				}

				// Offset within the compacted row: lead bytes first,
				// trail bytes directly after.
				offset := l.faceLead + l.faceTrail

				// Per-face normals, colors and object IDs make sense;
				// per-face positions or texture coordinates don't and
				// fall through as custom attributes.
				switch p.name {
				case "nx":
					faceNormals.set(0, p.typ, offset)
				case "ny":
					faceNormals.set(1, p.typ, offset)
				case "nz":
					faceNormals.set(2, p.typ, offset)
				case "red":
					faceColors.set(0, p.typ, offset)
				case "green":
					faceColors.set(1, p.typ, offset)
				case "blue":
					faceColors.set(2, p.typ, offset)
				case "alpha":
					faceColors.set(3, p.typ, offset)
				case objectIDName:
					faceObjectIDType = p.typ
					faceObjectIDOffset = offset
				default:
					l.faceAttrs = append(l.faceAttrs, Attribute{
						Role:   RoleCustom,
						Name:   p.name,
						Format: Format{Type: p.typ, Count: 1},
						Offset: offset,
					})
					l.intern(p.name)
				}

				if haveFaceList {
					l.faceTrail += p.typ.Size()
				} else {
					l.faceLead += p.typ.Size()
				}
			}
		}
	}

	if !positions.all(3) {
		return nil, ErrIncompleteVertexSpec
	}
	if !haveFaceList {
		return nil, ErrIncompleteFaceSpec
	}

	// Strides are known now; fill them in for custom attributes.
	faceStride := l.faceLead + l.faceTrail
	for i := range l.vertexAttrs {
		l.vertexAttrs[i].Stride = l.vertexStride
	}
	for i := range l.faceAttrs {
		l.faceAttrs[i].Stride = faceStride
	}

	// Positions.
	if err := checkVectorAttribute(RolePosition, &positions, 3); err != nil {
		return nil, err
	}
	if !allowedType(positions.typ[0], TypeFloat32, TypeUint8, TypeInt8, TypeUint16, TypeInt16) {
		return nil, fmt.Errorf("%w: unsupported position component type %s", ErrUnsupportedType, positions.typ[0])
	}
	l.vertexAttrs = append(l.vertexAttrs, Attribute{
		Role:   RolePosition,
		Format: Format{Type: positions.typ[0], Count: 3},
		Offset: positions.off[0],
		Stride: l.vertexStride,
	})

	// Normals, vertex or face owned.
	for _, n := range []struct {
		slots  *vecSlots
		attrs  *[]Attribute
		stride int
	}{
		{&normals, &l.vertexAttrs, l.vertexStride},
		{&faceNormals, &l.faceAttrs, faceStride},
	} {
		if !n.slots.any(3) {
			continue
		}
		if err := checkVectorAttribute(RoleNormal, n.slots, 3); err != nil {
			return nil, err
		}
		if !allowedType(n.slots.typ[0], TypeFloat32, TypeInt8, TypeInt16) {
			return nil, fmt.Errorf("%w: unsupported normal component type %s", ErrUnsupportedType, n.slots.typ[0])
		}
		*n.attrs = append(*n.attrs, Attribute{
			Role: RoleNormal,
			// Integer normals are normalized to [-1,1].
			Format: Format{Type: n.slots.typ[0], Count: 3, Normalized: !n.slots.typ[0].IsFloat()},
			Offset: n.slots.off[0],
			Stride: n.stride,
		})
	}

	// Texture coordinates (vertex only).
	if texCoords.any(2) {
		if err := checkVectorAttribute(RoleTextureCoordinate, &texCoords, 2); err != nil {
			return nil, err
		}
		if !allowedType(texCoords.typ[0], TypeFloat32, TypeUint8, TypeUint16) {
			return nil, fmt.Errorf("%w: unsupported texture coordinate component type %s", ErrUnsupportedType, texCoords.typ[0])
		}
		l.vertexAttrs = append(l.vertexAttrs, Attribute{
			Role:   RoleTextureCoordinate,
			Format: Format{Type: texCoords.typ[0], Count: 2, Normalized: !texCoords.typ[0].IsFloat()},
			Offset: texCoords.off[0],
			Stride: l.vertexStride,
		})
	}

	// Colors, vertex or face owned. Alpha is optional.
	for _, c := range []struct {
		slots  *vecSlots
		attrs  *[]Attribute
		stride int
	}{
		{&colors, &l.vertexAttrs, l.vertexStride},
		{&faceColors, &l.faceAttrs, faceStride},
	} {
		if !c.slots.any(4) {
			continue
		}
		count := 3
		if c.slots.off[3] >= 0 {
			count = 4
		}
		if err := checkVectorAttribute(RoleColor, c.slots, count); err != nil {
			return nil, err
		}
		if !allowedType(c.slots.typ[0], TypeFloat32, TypeUint8, TypeUint16) {
			return nil, fmt.Errorf("%w: unsupported color component type %s", ErrUnsupportedType, c.slots.typ[0])
		}
		*c.attrs = append(*c.attrs, Attribute{
			Role:   RoleColor,
			Format: Format{Type: c.slots.typ[0], Count: count, Normalized: !c.slots.typ[0].IsFloat()},
			Offset: c.slots.off[0],
			Stride: c.stride,
		})
	}

	// Object IDs, vertex or face owned. Various datasets in the wild
	// declare them signed; interpret as unsigned of the same width.
	for _, o := range []struct {
		typ    ComponentType
		offset int
		attrs  *[]Attribute
		stride int
	}{
		{objectIDType, objectIDOffset, &l.vertexAttrs, l.vertexStride},
		{faceObjectIDType, faceObjectIDOffset, &l.faceAttrs, faceStride},
	} {
		if o.offset < 0 {
			continue
		}
		unsigned := o.typ.Unsigned()
		if unsigned == TypeInvalid {
			return nil, fmt.Errorf("%w: unsupported object ID component type %s", ErrUnsupportedType, o.typ)
		}
		*o.attrs = append(*o.attrs, Attribute{
			Role:   RoleObjectID,
			Format: Format{Type: unsigned, Count: 1},
			Offset: o.offset,
			Stride: o.stride,
		})
	}

	return l, nil
}

// intern assigns a stable id to a custom attribute name on first
// sight. The table is append-only and shared between vertex and face
// scope, so a name used in both places resolves to the same id.
func (l *layout) intern(name string) int {
	if id, ok := l.nameIDs[name]; ok {
		return id
	}
	id := len(l.names)
	l.names = append(l.names, name)
	l.nameIDs[name] = id
	return id
}

// checkVectorAttribute validates that the first n components of a
// multi-component role share one type and sit right after each other
// in canonical order.
func checkVectorAttribute(role Role, s *vecSlots, n int) error {
	for i := 1; i < n; i++ {
		if s.typ[i] != s.typ[0] {
			return fmt.Errorf("%w: expecting all %s components to have the same type but got [%s]",
				ErrInvalidLayout, role, joinTypes(s.typ[:n]))
		}
	}
	size := s.typ[0].Size()
	for i := 1; i < n; i++ {
		if s.off[i] != s.off[i-1]+size {
			return fmt.Errorf("%w: expecting %s components to be tightly packed, but got offsets %v for a %d-byte type",
				ErrInvalidLayout, role, s.off[:n], size)
		}
	}
	return nil
}

func allowedType(t ComponentType, allowed ...ComponentType) bool {
	for _, a := range allowed {
		if t == a {
			return true
		}
	}
	return false
}

func joinTypes(types []ComponentType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
