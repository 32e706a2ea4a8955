package ply

import "fmt"

// ComponentType identifies the scalar type of a single attribute component.
type ComponentType uint8

// Component type constants.
const (
	TypeInvalid ComponentType = iota
	TypeUint8
	TypeInt8
	TypeUint16
	TypeInt16
	TypeUint32
	TypeInt32
	TypeFloat32
	TypeFloat64
)

// ParseComponentType resolves a PLY type token to a component type.
// Both the classic spellings (uchar, short, float) and the sized
// spellings (uint8, int16, float32) are accepted. Unknown tokens
// return TypeInvalid.
func ParseComponentType(token string) ComponentType {
	switch token {
	case "uchar", "uint8":
		return TypeUint8
	case "char", "int8":
		return TypeInt8
	case "ushort", "uint16":
		return TypeUint16
	case "short", "int16":
		return TypeInt16
	case "uint", "uint32":
		return TypeUint32
	case "int", "int32":
		return TypeInt32
	case "float", "float32":
		return TypeFloat32
	case "double", "float64":
		return TypeFloat64
	}
	return TypeInvalid
}

// Size returns the component width in bytes.
func (t ComponentType) Size() int {
	switch t {
	case TypeUint8, TypeInt8:
		return 1
	case TypeUint16, TypeInt16:
		return 2
	case TypeUint32, TypeInt32, TypeFloat32:
		return 4
	case TypeFloat64:
		return 8
	default:
		return 0
	}
}

// String returns the canonical PLY token for the type.
func (t ComponentType) String() string {
	switch t {
	case TypeUint8:
		return "uchar"
	case TypeInt8:
		return "char"
	case TypeUint16:
		return "ushort"
	case TypeInt16:
		return "short"
	case TypeUint32:
		return "uint"
	case TypeInt32:
		return "int"
	case TypeFloat32:
		return "float"
	case TypeFloat64:
		return "double"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(t))
	}
}

// IsFloat returns true for floating-point component types.
func (t ComponentType) IsFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// Unsigned returns the unsigned type of the same width for integer
// types, and TypeInvalid for floating-point types. Object ID
// attributes use this to reinterpret signed declarations.
func (t ComponentType) Unsigned() ComponentType {
	switch t {
	case TypeUint8, TypeInt8:
		return TypeUint8
	case TypeUint16, TypeInt16:
		return TypeUint16
	case TypeUint32, TypeInt32:
		return TypeUint32
	default:
		return TypeInvalid
	}
}

// IndexType identifies the width of face index and face size values.
// Index values are always unsigned; signed spellings in the header map
// to the unsigned type of the same width.
type IndexType uint8

// Index type constants.
const (
	IndexInvalid IndexType = iota
	IndexUint8
	IndexUint16
	IndexUint32
)

// ParseIndexType resolves a PLY type token to an index type.
// Unknown or non-integer tokens return IndexInvalid.
func ParseIndexType(token string) IndexType {
	switch token {
	case "uchar", "uint8", "char", "int8":
		return IndexUint8
	case "ushort", "uint16", "short", "int16":
		return IndexUint16
	case "uint", "uint32", "int", "int32":
		return IndexUint32
	}
	return IndexInvalid
}

// Size returns the index width in bytes.
func (t IndexType) Size() int {
	switch t {
	case IndexUint8:
		return 1
	case IndexUint16:
		return 2
	case IndexUint32:
		return 4
	default:
		return 0
	}
}

// String returns the canonical PLY token for the index type.
func (t IndexType) String() string {
	switch t {
	case IndexUint8:
		return "uchar"
	case IndexUint16:
		return "ushort"
	case IndexUint32:
		return "uint"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(t))
	}
}

// Role is the semantic meaning assigned to an attribute.
type Role uint8

// Attribute roles.
const (
	RoleCustom Role = iota
	RolePosition
	RoleNormal
	RoleTextureCoordinate
	RoleColor
	RoleObjectID
)

// String returns a human-readable role name.
func (r Role) String() string {
	switch r {
	case RolePosition:
		return "position"
	case RoleNormal:
		return "normal"
	case RoleTextureCoordinate:
		return "texture coordinate"
	case RoleColor:
		return "color"
	case RoleObjectID:
		return "object ID"
	case RoleCustom:
		return "custom"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// Format describes the in-memory layout of one attribute value: the
// component type, the number of components and whether integer values
// are normalized to the [0,1] or [-1,1] range.
type Format struct {
	Type       ComponentType
	Count      int
	Normalized bool
}

// Size returns the total byte size of one attribute value.
func (f Format) Size() int {
	return f.Type.Size() * f.Count
}

// String returns a compact description such as "float3" or "uchar4n".
func (f Format) String() string {
	s := fmt.Sprintf("%s%d", f.Type, f.Count)
	if f.Normalized {
		s += "n"
	}
	return s
}
