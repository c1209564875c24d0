package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"cadgrade/pkg/geometry"
)

type plyElement struct {
	name  string
	count int
	props []string
}

// parsePLY reads an ascii PLY file. The header declares elements in order;
// only the vertex x/y/z properties and the face vertex list are consumed,
// any other element is skipped line by line. Binary PLY is rejected.
func parsePLY(data []byte) (*geometry.Mesh, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "ply" {
		return nil, fmt.Errorf("missing ply header")
	}

	var (
		elements  []plyElement
		ascii     bool
		endHeader bool
	)

header:
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] == "comment" {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("unsupported ply format %q, only ascii", strings.Join(fields[1:], " "))
			}
			ascii = true
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("bad element declaration %q", strings.Join(fields, " "))
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bad element count %q", fields[2])
			}
			elements = append(elements, plyElement{name: fields[1], count: n})
		case "property":
			if len(elements) == 0 {
				return nil, fmt.Errorf("property declared before any element")
			}
			last := &elements[len(elements)-1]
			last.props = append(last.props, fields[len(fields)-1])
		case "end_header":
			endHeader = true
			break header
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !endHeader {
		return nil, fmt.Errorf("missing end_header")
	}
	if !ascii {
		return nil, fmt.Errorf("missing format declaration")
	}

	m := &geometry.Mesh{}
	for _, el := range elements {
		switch el.name {
		case "vertex":
			xi := propIndex(el.props, "x")
			yi := propIndex(el.props, "y")
			zi := propIndex(el.props, "z")
			if xi < 0 || yi < 0 || zi < 0 {
				return nil, fmt.Errorf("vertex element lacks x/y/z properties")
			}
			for i := 0; i < el.count; i++ {
				fields, err := plyLine(scanner)
				if err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				if len(fields) <= xi || len(fields) <= yi || len(fields) <= zi {
					return nil, fmt.Errorf("vertex %d: truncated", i)
				}
				v, err := parseVec3(fields[xi], fields[yi], fields[zi])
				if err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				m.Vertices = append(m.Vertices, v)
			}

		case "face":
			for i := 0; i < el.count; i++ {
				fields, err := plyLine(scanner)
				if err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
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

		default:
			for i := 0; i < el.count; i++ {
				if _, err := plyLine(scanner); err != nil {
					return nil, fmt.Errorf("%s %d: %w", el.name, i, err)
				}
			}
		}
	}

	return m, nil
}

// plyLine returns the fields of the next non-empty body line.
func plyLine(scanner *bufio.Scanner) ([]string, error) {
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		return fields, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("unexpected end of file")
}

func propIndex(props []string, name string) int {
	for i, p := range props {
		if p == name {
			return i
		}
	}
	return -1
}
