package ply

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Body decode errors.
var (
	ErrIncompleteVertexData = errors.New("incomplete vertex data")
	ErrIncompleteIndexData  = errors.New("incomplete index data")
	ErrIncompleteFaceData   = errors.New("incomplete face data")
	ErrUnsupportedFaceSize  = errors.New("unsupported face size")
	ErrFaceLayerUnavailable = errors.New("face layer not available when per-face attributes are promoted")
)

// DecodeMesh decodes the document body into a triangle mesh. Quads
// are split into two triangles; per-face attributes are promoted to
// per-vertex attributes when the document was opened with
// PerFaceToPerVertex. Each call re-derives the mesh from the owned
// buffer and is independent of previous calls.
func (d *Document) DecodeMesh() (*Mesh, error) {
	l := d.layout

	body := d.data[d.headerSize:]
	vertexBytes := l.vertexStride * l.vertexCount
	if len(body) < vertexBytes {
		return nil, ErrIncompleteVertexData
	}
	vertexData := make([]byte, vertexBytes)
	copy(vertexData, body[:vertexBytes])

	wantFaceRows := d.opts.PerFaceToPerVertex && len(l.faceAttrs) > 0
	indexData, faceData, triCount, err := d.parseFaces(body[vertexBytes:], true, wantFaceRows)
	if err != nil {
		return nil, err
	}

	// One endian pass over the final materialized buffers.
	if d.needsSwap {
		swapAttributes(vertexData, l.vertexAttrs, l.vertexCount)
		swapPacked(indexData, l.faceIndexType.Size())
		if wantFaceRows {
			swapAttributes(faceData, l.faceAttrs, triCount)
		}
	}

	mesh := &Mesh{
		Primitive:   Triangles,
		IndexType:   l.faceIndexType,
		Indices:     indexData,
		VertexCount: l.vertexCount,
		VertexData:  vertexData,
		Attributes:  append([]Attribute(nil), l.vertexAttrs...),
	}

	if wantFaceRows {
		d.opts.Log.Debug("converting per-face attributes to per-vertex",
			zap.Int("attributes", len(l.faceAttrs)))
		return promoteFaceAttributes(mesh, faceData, l.faceLead+l.faceTrail, l.faceAttrs, triCount), nil
	}
	return mesh, nil
}

// FaceLayer decodes the per-triangle-face attribute view. It is only
// available when the document was opened without per-face promotion.
func (d *Document) FaceLayer() (*FaceAttributes, error) {
	if d.opts.PerFaceToPerVertex {
		return nil, ErrFaceLayerUnavailable
	}
	l := d.layout

	body := d.data[d.headerSize:]
	vertexBytes := l.vertexStride * l.vertexCount
	if len(body) < vertexBytes {
		return nil, ErrIncompleteVertexData
	}

	_, faceData, triCount, err := d.parseFaces(body[vertexBytes:], false, true)
	if err != nil {
		return nil, err
	}
	if d.needsSwap {
		swapAttributes(faceData, l.faceAttrs, triCount)
	}

	return &FaceAttributes{
		TriangleCount: triCount,
		Data:          faceData,
		Attributes:    append([]Attribute(nil), l.faceAttrs...),
	}, nil
}

// parseFaces reads the face region, producing a flat triangle index
// buffer and compacted per-triangle attribute rows. Output stays in
// file byte order; the caller swaps afterwards.
func (d *Document) parseFaces(in []byte, wantIndices, wantFaceRows bool) (indexData, faceData []byte, triCount int, err error) {
	l := d.layout
	sizeW := l.faceSizeType.Size()
	indexW := l.faceIndexType.Size()
	rowFixed := l.faceLead + l.faceTrail

	// Fast path: the byte count proves every face is a triangle, so
	// index and attribute regions can be copied with strided row
	// copies without interpreting a single face size. Must produce
	// byte-identical output to the slow path below.
	fullRow := l.faceLead + sizeW + 3*indexW + l.faceTrail
	if d.opts.TriangleFastPath && len(in) == l.faceCount*fullRow {
		triCount = l.faceCount
		if wantIndices {
			indexData = make([]byte, l.faceCount*3*indexW)
		}
		if wantFaceRows {
			faceData = make([]byte, l.faceCount*rowFixed)
		}
		for i := 0; i < l.faceCount; i++ {
			row := in[i*fullRow : (i+1)*fullRow]
			if wantIndices {
				copy(indexData[i*3*indexW:], row[l.faceLead+sizeW:l.faceLead+sizeW+3*indexW])
			}
			if wantFaceRows {
				dst := faceData[i*rowFixed : (i+1)*rowFixed]
				copy(dst, row[:l.faceLead])
				copy(dst[l.faceLead:], row[fullRow-l.faceTrail:])
			}
		}
		return indexData, faceData, triCount, nil
	}

	// Slow path: interpret every row, splitting quads into two
	// triangles with the fixed (0,1,2)+(0,2,3) fan and duplicating
	// the face attribute row for the synthetic second triangle.
	order := fileOrder(d.LittleEndian())
	if wantIndices {
		indexData = make([]byte, 0, l.faceCount*3*indexW)
	}
	if wantFaceRows {
		faceData = make([]byte, 0, l.faceCount*rowFixed)
	}
	for i := 0; i < l.faceCount; i++ {
		if len(in) < l.faceLead+sizeW {
			return nil, nil, 0, ErrIncompleteIndexData
		}
		lead := in[:l.faceLead]
		faceSize := readIndexValue(in[l.faceLead:], l.faceSizeType, order)
		in = in[l.faceLead+sizeW:]

		if faceSize < 3 || faceSize > 4 {
			return nil, nil, 0, fmt.Errorf("%w %d", ErrUnsupportedFaceSize, faceSize)
		}
		if len(in) < int(faceSize)*indexW+l.faceTrail {
			return nil, nil, 0, ErrIncompleteFaceData
		}
		indices := in[:int(faceSize)*indexW]
		trail := in[int(faceSize)*indexW : int(faceSize)*indexW+l.faceTrail]
		in = in[int(faceSize)*indexW+l.faceTrail:]

		if wantIndices {
			indexData = append(indexData, indices[:3*indexW]...)
		}
		if wantFaceRows {
			faceData = append(faceData, lead...)
			faceData = append(faceData, trail...)
		}
		triCount++

		if faceSize == 4 {
			// 0 0---3
			// |\ \  |
			// | \ \ |
			// |  \ \|
			// 1---2 2
			if wantIndices {
				indexData = append(indexData, indices[:indexW]...)
				indexData = append(indexData, indices[2*indexW:4*indexW]...)
			}
			if wantFaceRows {
				faceData = append(faceData, lead...)
				faceData = append(faceData, trail...)
			}
			triCount++
		}
	}
	return indexData, faceData, triCount, nil
}
