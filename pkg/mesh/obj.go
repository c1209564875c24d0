package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"cadgrade/pkg/geometry"
)

// parseOBJ reads the vertex and face statements of a Wavefront OBJ file.
// Texture/normal references on face corners are ignored, polygons are
// fan-triangulated, and negative indices resolve relative to the vertices
// seen so far, per the format.
func parseOBJ(data []byte) (*geometry.Mesh, error) {
	m := &geometry.Mesh{}

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
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			v, err := parseVec3(fields[1], fields[2], fields[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Vertices = append(m.Vertices, v)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, corner := range fields[1:] {
				i, err := parseOBJIndex(corner, len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				m.Faces = append(m.Faces, geometry.Triangle{idx[0], idx[k], idx[k+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseOBJIndex resolves a face corner like "3", "3/1", or "-2//4" to a
// zero-based vertex index.
func parseOBJIndex(corner string, numVertices int) (int, error) {
	ref := corner
	if k := strings.IndexByte(corner, '/'); k >= 0 {
		ref = corner[:k]
	}
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", corner)
	}
	switch {
	case i > 0:
		return i - 1, nil
	case i < 0:
		return numVertices + i, nil
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}
}

func parseVec3(xs, ys, zs string) (geometry.Vec3, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("bad coordinate %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("bad coordinate %q", ys)
	}
	z, err := strconv.ParseFloat(zs, 64)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("bad coordinate %q", zs)
	}
	return geometry.Vec3{X: x, Y: y, Z: z}, nil
}
