package ply

import "encoding/binary"

// hostLittleEndian reports the byte order the process runs on.
var hostLittleEndian = binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 0x0001

// fileOrder returns the binary.ByteOrder matching the header's
// declared encoding.
func fileOrder(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// swapBytes reverses one width-byte field in place. Width 1 is a
// no-op.
func swapBytes(b []byte, width int) {
	for i, j := 0, width-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// swapPacked byte-reverses every width-byte field of a packed buffer.
func swapPacked(b []byte, width int) {
	if width == 1 {
		return
	}
	for off := 0; off+width <= len(b); off += width {
		swapBytes(b[off:off+width], width)
	}
}

// swapAttribute byte-reverses every component of a strided attribute
// view over count rows. Dispatch is purely by component width; the
// semantic role does not matter.
func swapAttribute(data []byte, a Attribute, count int) {
	width := a.Format.Type.Size()
	if width == 1 {
		return
	}
	for i := 0; i < count; i++ {
		row := a.Offset + i*a.Stride
		for c := 0; c < a.Format.Count; c++ {
			off := row + c*width
			swapBytes(data[off:off+width], width)
		}
	}
}

// swapAttributes runs swapAttribute over a whole attribute list.
func swapAttributes(data []byte, attrs []Attribute, count int) {
	for _, a := range attrs {
		swapAttribute(data, a, count)
	}
}

// readIndexValue reads one index value of the given type and byte
// order from the start of b.
func readIndexValue(b []byte, t IndexType, order binary.ByteOrder) uint32 {
	switch t {
	case IndexUint8:
		return uint32(b[0])
	case IndexUint16:
		return uint32(order.Uint16(b))
	case IndexUint32:
		return order.Uint32(b)
	default:
		return 0
	}
}
