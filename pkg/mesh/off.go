package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"cadgrade/pkg/geometry"
)

// parseOFF reads the Object File Format: an OFF header, a counts line, then
// vertex lines and polygon face lines. Polygons are fan-triangulated.
func parseOFF(data []byte) (*geometry.Mesh, error) {
	lines, err := offLines(data)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 || !strings.EqualFold(lines[0][0], "OFF") {
		return nil, fmt.Errorf("missing OFF header")
	}
	if len(lines) < 2 || len(lines[1]) < 2 {
		return nil, fmt.Errorf("missing vertex/face counts")
	}

	nv, err := strconv.Atoi(lines[1][0])
	if err != nil || nv < 0 {
		return nil, fmt.Errorf("bad vertex count %q", lines[1][0])
	}
	nf, err := strconv.Atoi(lines[1][1])
	if err != nil || nf < 0 {
		return nil, fmt.Errorf("bad face count %q", lines[1][1])
	}
	if len(lines) < 2+nv+nf {
		return nil, fmt.Errorf("truncated file: want %d vertices and %d faces", nv, nf)
	}

	m := &geometry.Mesh{Vertices: make([]geometry.Vec3, 0, nv)}

	for i := 0; i < nv; i++ {
		fields := lines[2+i]
		if len(fields) < 3 {
			return nil, fmt.Errorf("vertex %d: truncated", i)
		}
		v, err := parseVec3(fields[0], fields[1], fields[2])
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		m.Vertices = append(m.Vertices, v)
	}

	for i := 0; i < nf; i++ {
		fields := lines[2+nv+i]
		k, err := strconv.Atoi(fields[0])
		if err != nil || k < 3 || len(fields) < 1+k {
			return nil, fmt.Errorf("face %d: bad corner count %q", i, fields[0])
		}
		idx := make([]int, k)
		for c := 0; c < k; c++ {
			idx[c], err = strconv.Atoi(fields[1+c])
			if err != nil {
				return nil, fmt.Errorf("face %d: bad index %q", i, fields[1+c])
			}
		}
		for c := 1; c+1 < k; c++ {
			m.Faces = append(m.Faces, geometry.Triangle{idx[0], idx[c], idx[c+1]})
		}
	}

	return m, nil
}

// offLines returns the non-empty, non-comment lines split into fields.
func offLines(data []byte) ([][]string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out [][]string
	for scanner.Scan() {
		line := scanner.Text()
		if k := strings.IndexByte(line, '#'); k >= 0 {
			line = line[:k]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, fields)
	}
	return out, scanner.Err()
}
