package ply

import "encoding/binary"

// promoteFaceAttributes converts per-face attributes into per-vertex
// attributes. Every (original vertex, face attribute row) pair a
// corner refers to becomes one output vertex; corners with identical
// pairs collapse, so seams split only where face values actually
// differ. Output indices are always widened to 32 bits to accommodate
// the growth.
func promoteFaceAttributes(mesh *Mesh, faceData []byte, faceStride int, faceAttrs []Attribute, triCount int) *Mesh {
	oldStride := 0
	if len(mesh.Attributes) > 0 {
		oldStride = mesh.Attributes[0].Stride
	}
	newStride := oldStride + faceStride

	// Corner record: original vertex index plus the owning face's
	// full attribute row, compared by structural byte equality.
	type source struct {
		vertex int
		face   int
	}
	seen := make(map[string]uint32, mesh.VertexCount)
	var sources []source

	corners := triCount * 3
	newIndices := make([]byte, corners*4)
	key := make([]byte, 4+faceStride)
	for i := 0; i < corners; i++ {
		orig := readIndex(mesh.Indices, mesh.IndexType, i)
		face := i / 3

		binary.NativeEndian.PutUint32(key, orig)
		copy(key[4:], faceData[face*faceStride:(face+1)*faceStride])

		id, ok := seen[string(key)]
		if !ok {
			id = uint32(len(sources))
			seen[string(key)] = id
			sources = append(sources, source{vertex: int(orig), face: face})
		}
		binary.NativeEndian.PutUint32(newIndices[4*i:], id)
	}

	// Gather vertex rows and append the face row of each source face.
	newVertexData := make([]byte, len(sources)*newStride)
	for id, src := range sources {
		dst := newVertexData[id*newStride : (id+1)*newStride]
		copy(dst, mesh.VertexData[src.vertex*oldStride:(src.vertex+1)*oldStride])
		copy(dst[oldStride:], faceData[src.face*faceStride:(src.face+1)*faceStride])
	}

	attrs := make([]Attribute, 0, len(mesh.Attributes)+len(faceAttrs))
	for _, a := range mesh.Attributes {
		a.Stride = newStride
		attrs = append(attrs, a)
	}
	for _, a := range faceAttrs {
		a.Offset += oldStride
		a.Stride = newStride
		attrs = append(attrs, a)
	}

	return &Mesh{
		Primitive:   Triangles,
		IndexType:   IndexUint32,
		Indices:     newIndices,
		VertexCount: len(sources),
		VertexData:  newVertexData,
		Attributes:  attrs,
	}
}
