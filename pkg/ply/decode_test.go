package ply

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
)

// binWriter builds binary PLY bodies for test fixtures.
type binWriter struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

func (w *binWriter) f32(vals ...float32) {
	for _, v := range vals {
		var b [4]byte
		w.order.PutUint32(b[:], math.Float32bits(v))
		w.buf.Write(b[:])
	}
}

func (w *binWriter) u8(vals ...uint8) {
	w.buf.Write(vals)
}

func (w *binWriter) u16(vals ...uint16) {
	for _, v := range vals {
		var b [2]byte
		w.order.PutUint16(b[:], v)
		w.buf.Write(b[:])
	}
}

func (w *binWriter) u32(vals ...uint32) {
	for _, v := range vals {
		var b [4]byte
		w.order.PutUint32(b[:], v)
		w.buf.Write(b[:])
	}
}

// buildPLY assembles a file from header lines and a body writer.
func buildPLY(order binary.ByteOrder, headerLines []string, body func(w *binWriter)) []byte {
	encoding := "binary_little_endian"
	if order == binary.BigEndian {
		encoding = "binary_big_endian"
	}
	header := "ply\nformat " + encoding + " 1.0\n" +
		strings.Join(headerLines, "\n") + "\nend_header\n"

	w := &binWriter{order: order}
	if body != nil {
		body(w)
	}
	return append([]byte(header), w.buf.Bytes()...)
}

// quadAndTriangle is the reference scenario: 5 vertices, one quad
// (0,1,2,3) and one triangle (3,2,4).
func quadAndTriangle(order binary.ByteOrder) []byte {
	return buildPLY(order, []string{
		"element vertex 5",
		"property float x",
		"property float y",
		"property float z",
		"element face 2",
		"property list uchar uint vertex_indices",
	}, func(w *binWriter) {
		w.f32(0, 0, 0)
		w.f32(1, 0, 0)
		w.f32(1, 1, 0)
		w.f32(0, 1, 0)
		w.f32(2, 0, 0)
		w.u8(4)
		w.u32(0, 1, 2, 3)
		w.u8(3)
		w.u32(3, 2, 4)
	})
}

func meshIndices(t *testing.T, m *Mesh) []uint32 {
	t.Helper()
	out := make([]uint32, m.IndexCount())
	for i := range out {
		out[i] = m.Index(i)
	}
	return out
}

func meshPositions(t *testing.T, m *Mesh) [][3]float32 {
	t.Helper()
	pos := m.FindAttribute(RolePosition)
	if pos == nil {
		t.Fatal("mesh has no position attribute")
	}
	out := make([][3]float32, m.VertexCount)
	for i := range out {
		for c := 0; c < 3; c++ {
			out[i][c] = m.Float32At(pos, i, c)
		}
	}
	return out
}

func TestDecodeMesh_QuadTriangulation(t *testing.T) {
	wantIndices := []uint32{0, 1, 2, 0, 2, 3, 3, 2, 4}
	wantPositions := [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {2, 0, 0},
	}

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			doc, err := Open(quadAndTriangle(order), nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			mesh, err := doc.DecodeMesh()
			if err != nil {
				t.Fatalf("DecodeMesh: %v", err)
			}

			if mesh.VertexCount != 5 {
				t.Errorf("expected 5 vertices, got %d", mesh.VertexCount)
			}
			if got := meshIndices(t, mesh); !equalUint32(got, wantIndices) {
				t.Errorf("indices = %v, want %v", got, wantIndices)
			}
			if got := meshPositions(t, mesh); !equalVec3(got, wantPositions) {
				t.Errorf("positions = %v, want %v", got, wantPositions)
			}
		})
	}
}

func TestDecodeMesh_EndiannessInvariance(t *testing.T) {
	le, err := Open(quadAndTriangle(binary.LittleEndian), nil)
	if err != nil {
		t.Fatalf("Open little: %v", err)
	}
	be, err := Open(quadAndTriangle(binary.BigEndian), nil)
	if err != nil {
		t.Fatalf("Open big: %v", err)
	}

	leMesh, err := le.DecodeMesh()
	if err != nil {
		t.Fatalf("DecodeMesh little: %v", err)
	}
	beMesh, err := be.DecodeMesh()
	if err != nil {
		t.Fatalf("DecodeMesh big: %v", err)
	}

	if !bytes.Equal(leMesh.Indices, beMesh.Indices) {
		t.Error("index buffers differ between little and big endian inputs")
	}
	if !bytes.Equal(leMesh.VertexData, beMesh.VertexData) {
		t.Error("vertex buffers differ between little and big endian inputs")
	}
}

// allTriangles builds a file whose byte count satisfies the fast-path
// precondition.
func allTriangles(order binary.ByteOrder) []byte {
	return buildPLY(order, []string{
		"element vertex 4",
		"property float x",
		"property float y",
		"property float z",
		"element face 2",
		"property list uchar ushort vertex_indices",
	}, func(w *binWriter) {
		w.f32(0, 0, 0)
		w.f32(1, 0, 0)
		w.f32(0, 1, 0)
		w.f32(1, 1, 0)
		w.u8(3)
		w.u16(0, 1, 2)
		w.u8(3)
		w.u16(2, 1, 3)
	})
}

func TestDecodeMesh_FastSlowEquivalence(t *testing.T) {
	data := allTriangles(binary.BigEndian)

	fast := DefaultOptions()
	slow := DefaultOptions()
	slow.TriangleFastPath = false

	fastDoc, err := Open(data, fast)
	if err != nil {
		t.Fatalf("Open fast: %v", err)
	}
	slowDoc, err := Open(data, slow)
	if err != nil {
		t.Fatalf("Open slow: %v", err)
	}

	fastMesh, err := fastDoc.DecodeMesh()
	if err != nil {
		t.Fatalf("DecodeMesh fast: %v", err)
	}
	slowMesh, err := slowDoc.DecodeMesh()
	if err != nil {
		t.Fatalf("DecodeMesh slow: %v", err)
	}

	if !bytes.Equal(fastMesh.Indices, slowMesh.Indices) {
		t.Error("fast path index bytes differ from slow path")
	}
	if !bytes.Equal(fastMesh.VertexData, slowMesh.VertexData) {
		t.Error("fast path vertex bytes differ from slow path")
	}
}

// The fast-path byte-count gate must not fire when quads are present,
// even with uniform per-face spans.
func TestDecodeMesh_QuadDefeatsFastPath(t *testing.T) {
	doc, err := Open(quadAndTriangle(binary.LittleEndian), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	mesh, err := doc.DecodeMesh()
	if err != nil {
		t.Fatalf("DecodeMesh: %v", err)
	}
	if got := mesh.IndexCount(); got != 9 {
		t.Errorf("expected 9 indices from quad+triangle, got %d", got)
	}
}

func TestDecodeMesh_Truncated(t *testing.T) {
	full := quadAndTriangle(binary.LittleEndian)
	headerEnd := bytes.Index(full, []byte("end_header\n")) + len("end_header\n")
	vertexBytes := 5 * 3 * 4

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "vertex region short",
			data:    full[:headerEnd+vertexBytes-1],
			wantErr: ErrIncompleteVertexData,
		},
		{
			name:    "missing face size",
			data:    full[:headerEnd+vertexBytes],
			wantErr: ErrIncompleteIndexData,
		},
		{
			name:    "indices cut short",
			data:    full[:headerEnd+vertexBytes+1+8],
			wantErr: ErrIncompleteFaceData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Open(tt.data, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if _, err := doc.DecodeMesh(); !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeMesh error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeMesh_UnsupportedFaceSize(t *testing.T) {
	data := buildPLY(binary.LittleEndian, []string{
		"element vertex 5",
		"property float x",
		"property float y",
		"property float z",
		"element face 1",
		"property list uchar uchar vertex_indices",
	}, func(w *binWriter) {
		for i := 0; i < 5; i++ {
			w.f32(float32(i), 0, 0)
		}
		w.u8(5)
		w.u8(0, 1, 2, 3, 4)
	})

	doc, err := Open(data, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = doc.DecodeMesh()
	if !errors.Is(err, ErrUnsupportedFaceSize) {
		t.Fatalf("expected unsupported face size error, got %v", err)
	}
	if !strings.Contains(err.Error(), "5") {
		t.Errorf("error should name the face size: %v", err)
	}
}

func TestDecodeMesh_Idempotent(t *testing.T) {
	doc, err := Open(quadAndTriangle(binary.BigEndian), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	first, err := doc.DecodeMesh()
	if err != nil {
		t.Fatalf("first DecodeMesh: %v", err)
	}
	second, err := doc.DecodeMesh()
	if err != nil {
		t.Fatalf("second DecodeMesh: %v", err)
	}

	if !bytes.Equal(first.Indices, second.Indices) || !bytes.Equal(first.VertexData, second.VertexData) {
		t.Error("repeated decode calls produced different results")
	}
}

// perFaceColors is the reference scenario with a per-face color.
func perFaceColors(order binary.ByteOrder) []byte {
	return buildPLY(order, []string{
		"element vertex 5",
		"property float x",
		"property float y",
		"property float z",
		"element face 2",
		"property list uchar uint vertex_indices",
		"property uchar red",
		"property uchar green",
		"property uchar blue",
	}, func(w *binWriter) {
		w.f32(0, 0, 0)
		w.f32(1, 0, 0)
		w.f32(1, 1, 0)
		w.f32(0, 1, 0)
		w.f32(2, 0, 0)
		w.u8(4)
		w.u32(0, 1, 2, 3)
		w.u8(10, 20, 30)
		w.u8(3)
		w.u32(3, 2, 4)
		w.u8(40, 50, 60)
	})
}

func TestFaceLayer(t *testing.T) {
	opts := DefaultOptions()
	opts.PerFaceToPerVertex = false

	doc, err := Open(perFaceColors(binary.LittleEndian), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	mesh, err := doc.DecodeMesh()
	if err != nil {
		t.Fatalf("DecodeMesh: %v", err)
	}
	if mesh.FindAttribute(RoleColor) != nil {
		t.Error("vertex mesh should not carry the per-face color without promotion")
	}
	if mesh.VertexCount != 5 {
		t.Errorf("expected 5 vertices, got %d", mesh.VertexCount)
	}

	faces, err := doc.FaceLayer()
	if err != nil {
		t.Fatalf("FaceLayer: %v", err)
	}
	if faces.TriangleCount != 3 {
		t.Fatalf("expected 3 triangle faces, got %d", faces.TriangleCount)
	}

	color := faces.FindAttribute(RoleColor)
	if color == nil {
		t.Fatal("face layer has no color attribute")
	}
	if !color.Format.Normalized {
		t.Error("uchar colors should be normalized")
	}

	// The quad's attribute row is duplicated for its second triangle.
	want := [][3]uint32{{10, 20, 30}, {10, 20, 30}, {40, 50, 60}}
	for i, w := range want {
		for c := 0; c < 3; c++ {
			if got := faces.UintAt(color, i, c); got != w[c] {
				t.Errorf("face %d component %d = %d, want %d", i, c, got, w[c])
			}
		}
	}
}

func TestFaceLayer_UnavailableWhenPromoting(t *testing.T) {
	doc, err := Open(perFaceColors(binary.LittleEndian), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := doc.FaceLayer(); !errors.Is(err, ErrFaceLayerUnavailable) {
		t.Errorf("expected face layer unavailable error, got %v", err)
	}
}

func equalUint32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalVec3(a, b [][3]float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
