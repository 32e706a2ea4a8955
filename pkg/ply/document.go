// Package ply implements a codec for the binary Stanford Triangle
// Format (PLY). Open parses the self-describing header into a typed
// attribute layout; DecodeMesh materializes the packed binary body
// into a triangulated in-memory mesh; Encode is the inverse.
//
// Only the binary little/big endian encodings are supported, with
// vertex and face elements and 3- or 4-vertex faces. Signed object ID
// declarations are silently reinterpreted as the unsigned type of the
// same width, matching what real-world exporters produce.
package ply

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Options control how a document is opened and decoded.
type Options struct {
	// PerFaceToPerVertex converts per-face attributes into per-vertex
	// attributes by splitting shared vertices at seams.
	PerFaceToPerVertex bool

	// TriangleFastPath enables the bulk-copy decode path when the body
	// byte count proves every face is a triangle.
	TriangleFastPath bool

	// ObjectIDAttribute is the property name recognized as the object
	// ID attribute.
	ObjectIDAttribute string

	// Log receives diagnostics; nil means no logging.
	Log *zap.Logger
}

// DefaultOptions returns the default decode options.
func DefaultOptions() *Options {
	return &Options{
		PerFaceToPerVertex: true,
		TriangleFastPath:   true,
		ObjectIDAttribute:  "object_id",
	}
}

// Document is an open PLY file: the owned byte buffer plus the planned
// attribute layout. A document is immutable after Open and safe for
// concurrent decode calls.
type Document struct {
	opts       Options
	data       []byte
	headerSize int
	needsSwap  bool
	layout     *layout
}

// Open parses the header of a binary PLY file and plans the attribute
// layout. The body is not validated here; truncation is reported by
// DecodeMesh or FaceLayer on first access. A nil opts uses
// DefaultOptions. The byte buffer is owned by the document for its
// lifetime and must not be modified by the caller.
func Open(data []byte, opts *Options) (*Document, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	d := &Document{opts: *opts}
	if d.opts.ObjectIDAttribute == "" {
		d.opts.ObjectIDAttribute = "object_id"
	}
	if d.opts.Log == nil {
		d.opts.Log = zap.NewNop()
	}

	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	l, err := planLayout(h, d.opts.ObjectIDAttribute)
	if err != nil {
		return nil, err
	}

	d.data = data
	d.headerSize = h.size
	d.needsSwap = h.littleEndian != hostLittleEndian
	d.layout = l
	return d, nil
}

// OpenFile reads a PLY file from disk and opens it.
func OpenFile(path string, opts *Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PLY file: %w", err)
	}
	return Open(data, opts)
}

// VertexCount returns the vertex count declared by the header.
func (d *Document) VertexCount() int { return d.layout.vertexCount }

// FaceCount returns the face count declared by the header. Quads in
// the body make the decoded triangle count larger.
func (d *Document) FaceCount() int { return d.layout.faceCount }

// LittleEndian returns true if the file body is little-endian.
func (d *Document) LittleEndian() bool {
	return d.needsSwap != hostLittleEndian
}

// VertexAttributes returns the planned per-vertex attribute views.
func (d *Document) VertexAttributes() []Attribute {
	return append([]Attribute(nil), d.layout.vertexAttrs...)
}

// FaceAttributeCount returns the number of per-face scalar attributes.
func (d *Document) FaceAttributeCount() int { return len(d.layout.faceAttrs) }

// AttributeName returns the name behind a custom attribute id, or ""
// if the id is out of range.
func (d *Document) AttributeName(id int) string {
	if id < 0 || id >= len(d.layout.names) {
		return ""
	}
	return d.layout.names[id]
}

// AttributeForName returns the stable id of a custom attribute name.
func (d *Document) AttributeForName(name string) (int, bool) {
	id, ok := d.layout.nameIDs[name]
	return id, ok
}
