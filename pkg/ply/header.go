package ply

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Header grammar errors.
var (
	ErrEmptyFile         = errors.New("the file is empty")
	ErrInvalidSignature  = errors.New("invalid file signature")
	ErrMissingFormatLine = errors.New("missing format line")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidHeader     = errors.New("invalid header")
)

// elementKind identifies the element a property belongs to.
type elementKind uint8

const (
	elementNone elementKind = iota
	elementVertex
	elementFace
)

// property is one parsed property line. Scalar properties carry a
// component type; the face index list carries size and index types
// instead.
type property struct {
	name      string
	typ       ComponentType
	list      bool
	sizeType  IndexType
	indexType IndexType
}

// element is a named, counted group of body rows.
type element struct {
	kind  elementKind
	count int
	props []property
}

// header is the parsed textual preamble of a PLY file.
type header struct {
	littleEndian bool
	elements     []element
	size         int // byte length including the end_header line
}

// headerState is the parser state: expecting the signature, expecting
// the format line, or inside the element declarations.
type headerState uint8

const (
	stateStart headerState = iota
	stateFormat
	stateBody
)

// parseHeader runs a single forward pass over the header lines and
// builds the element schema. It stops after end_header; header.size
// tells where the binary body begins.
func parseHeader(data []byte) (*header, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	h := &header{}
	state := stateStart
	pos := 0

	for pos < len(data) {
		line, next := extractLine(data, pos)
		pos = next

		trimmed := strings.TrimRight(line, " \t\r")
		tokens := strings.Fields(trimmed)

		// Comments and blank lines are allowed anywhere after the
		// signature, including before the format line.
		if state != stateStart && (len(tokens) == 0 || tokens[0] == "comment") {
			continue
		}

		switch state {
		case stateStart:
			if trimmed != "ply" {
				return nil, fmt.Errorf("%w %q", ErrInvalidSignature, trimmed)
			}
			state = stateFormat

		case stateFormat:
			if tokens[0] != "format" {
				return nil, fmt.Errorf("%w: expected format line, got %q", ErrInvalidHeader, trimmed)
			}
			if len(tokens) != 3 {
				return nil, fmt.Errorf("%w: invalid format line %q", ErrInvalidHeader, trimmed)
			}
			if tokens[2] != "1.0" {
				return nil, fmt.Errorf("%w %s %s", ErrUnsupportedFormat, tokens[1], tokens[2])
			}
			switch tokens[1] {
			case "binary_little_endian":
				h.littleEndian = true
			case "binary_big_endian":
				h.littleEndian = false
			default:
				return nil, fmt.Errorf("%w %s %s", ErrUnsupportedFormat, tokens[1], tokens[2])
			}
			state = stateBody

		case stateBody:
			switch tokens[0] {
			case "element":
				if err := h.parseElement(tokens); err != nil {
					return nil, err
				}
			case "property":
				if err := h.parseProperty(tokens, trimmed); err != nil {
					return nil, err
				}
			case "end_header":
				h.size = pos
				return h, nil
			default:
				return nil, fmt.Errorf("%w: unknown line %q", ErrInvalidHeader, trimmed)
			}
		}
	}

	if state != stateBody {
		return nil, ErrMissingFormatLine
	}
	return nil, fmt.Errorf("%w: missing end_header", ErrInvalidHeader)
}

// parseElement handles an "element <name> <count>" line.
func (h *header) parseElement(tokens []string) error {
	if len(tokens) != 3 {
		return fmt.Errorf("%w: invalid element line %q", ErrInvalidHeader, strings.Join(tokens, " "))
	}

	var kind elementKind
	switch tokens[1] {
	case "vertex":
		kind = elementVertex
	case "face":
		kind = elementFace
	default:
		return fmt.Errorf("%w: unknown element %q", ErrInvalidHeader, tokens[1])
	}
	for _, e := range h.elements {
		if e.kind == kind {
			return fmt.Errorf("%w: duplicate element %q", ErrInvalidHeader, tokens[1])
		}
	}

	count, err := strconv.Atoi(tokens[2])
	if err != nil || count < 0 {
		return fmt.Errorf("%w: invalid element count %q", ErrInvalidHeader, tokens[2])
	}

	h.elements = append(h.elements, element{kind: kind, count: count})
	return nil
}

// parseProperty handles a "property ..." line in the context of the
// current element.
func (h *header) parseProperty(tokens []string, line string) error {
	if len(h.elements) == 0 {
		return fmt.Errorf("%w: unexpected property line", ErrInvalidHeader)
	}
	cur := &h.elements[len(h.elements)-1]

	switch cur.kind {
	case elementVertex:
		if len(tokens) != 3 {
			return fmt.Errorf("%w: invalid vertex property line %q", ErrInvalidHeader, line)
		}
		typ := ParseComponentType(tokens[1])
		if typ == TypeInvalid {
			return fmt.Errorf("%w: invalid vertex component type %q", ErrInvalidHeader, tokens[1])
		}
		cur.props = append(cur.props, property{name: tokens[2], typ: typ})

	case elementFace:
		// The vertex_indices name is usual, Assimp exports with
		// vertex_index; both appear in the wild.
		if len(tokens) == 5 && tokens[1] == "list" &&
			(tokens[4] == "vertex_indices" || tokens[4] == "vertex_index") {
			for _, p := range cur.props {
				if p.list {
					return fmt.Errorf("%w: duplicate face index list", ErrInvalidHeader)
				}
			}
			sizeType := ParseIndexType(tokens[2])
			if sizeType == IndexInvalid {
				return fmt.Errorf("%w: invalid face size type %q", ErrInvalidHeader, tokens[2])
			}
			indexType := ParseIndexType(tokens[3])
			if indexType == IndexInvalid {
				return fmt.Errorf("%w: invalid face index type %q", ErrInvalidHeader, tokens[3])
			}
			cur.props = append(cur.props, property{
				name:      tokens[4],
				list:      true,
				sizeType:  sizeType,
				indexType: indexType,
			})
		} else if len(tokens) == 3 {
			typ := ParseComponentType(tokens[1])
			if typ == TypeInvalid {
				return fmt.Errorf("%w: invalid face component type %q", ErrInvalidHeader, tokens[1])
			}
			cur.props = append(cur.props, property{name: tokens[2], typ: typ})
		} else {
			return fmt.Errorf("%w: invalid face property line %q", ErrInvalidHeader, line)
		}
	}
	return nil
}

// extractLine returns the line starting at pos without its newline,
// and the position of the next line.
func extractLine(data []byte, pos int) (string, int) {
	for i := pos; i < len(data); i++ {
		if data[i] == '\n' {
			return string(data[pos:i]), i + 1
		}
	}
	return string(data[pos:]), len(data)
}
