package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"cadgrade/pkg/geometry"
)

const (
	stlBinaryHeaderSize = 84 // 80-byte comment + uint32 triangle count
	stlBinaryRecordSize = 50 // normal + 3 vertices (float32 each) + attribute
)

// parseSTL handles both STL encodings. The binary layout is detected by
// size arithmetic rather than the "solid" prefix, since binary exporters
// routinely write "solid" into the comment header anyway.
func parseSTL(data []byte) (*geometry.Mesh, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	return parseASCIISTL(data)
}

func isBinarySTL(data []byte) bool {
	if len(data) < stlBinaryHeaderSize {
		return false
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	return len(data) == stlBinaryHeaderSize+int(count)*stlBinaryRecordSize
}

func parseBinarySTL(data []byte) (*geometry.Mesh, error) {
	count := int(binary.LittleEndian.Uint32(data[80:84]))

	w := newVertexWelder()
	m := &geometry.Mesh{Faces: make([]geometry.Triangle, 0, count)}

	off := stlBinaryHeaderSize
	for t := 0; t < count; t++ {
		rec := data[off : off+stlBinaryRecordSize]
		var tri geometry.Triangle
		for c := 0; c < 3; c++ {
			// skip the 12-byte normal, vertices start at byte 12
			base := 12 + c*12
			v := geometry.Vec3{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base+8:]))),
			}
			tri[c] = w.index(m, v)
		}
		m.Faces = append(m.Faces, tri)
		off += stlBinaryRecordSize
	}
	return m, nil
}

func parseASCIISTL(data []byte) (*geometry.Mesh, error) {
	w := newVertexWelder()
	m := &geometry.Mesh{}

	var corners []int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			v, err := parseVec3(fields[1], fields[2], fields[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			corners = append(corners, w.index(m, v))

		case "endfacet":
			if len(corners) != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, want 3", lineNo, len(corners))
			}
			m.Faces = append(m.Faces, geometry.Triangle{corners[0], corners[1], corners[2]})
			corners = corners[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(corners) != 0 {
		return nil, fmt.Errorf("truncated facet at end of file")
	}
	return m, nil
}

// vertexWelder deduplicates the per-triangle vertices STL stores. Without
// welding no STL mesh would ever count as watertight, since every edge
// would belong to exactly one face.
type vertexWelder struct {
	seen map[geometry.Vec3]int
}

func newVertexWelder() *vertexWelder {
	return &vertexWelder{seen: make(map[geometry.Vec3]int)}
}

func (w *vertexWelder) index(m *geometry.Mesh, v geometry.Vec3) int {
	if i, ok := w.seen[v]; ok {
		return i
	}
	i := len(m.Vertices)
	m.Vertices = append(m.Vertices, v)
	w.seen[v] = i
	return i
}
