package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyMesh is returned when a mesh with no vertices is sampled.
var ErrEmptyMesh = errors.New("mesh has no vertices")

// Vec3 is a point or vector in model space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistSq returns the squared distance between v and o. Kept squared so
// nearest-neighbor scans can defer the sqrt to the winning candidate.
func (v Vec3) DistSq(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Triangle is a single mesh face by vertex index.
type Triangle [3]int

// Mesh is a triangulated polygon mesh in its native units.
type Mesh struct {
	Name     string
	Vertices []Vec3
	Faces    []Triangle
}

// Validate checks that every face index points at an existing vertex.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("face %d references vertex %d, mesh has %d", i, idx, n)
			}
		}
	}
	return nil
}

// FaceArea returns the area of face i.
func (m *Mesh) FaceArea(i int) float64 {
	f := m.Faces[i]
	a := m.Vertices[f[0]]
	b := m.Vertices[f[1]]
	c := m.Vertices[f[2]]
	return b.Sub(a).Cross(c.Sub(a)).Norm() / 2
}

// SurfaceArea returns the total area over all faces.
func (m *Mesh) SurfaceArea() float64 {
	total := 0.0
	for i := range m.Faces {
		total += m.FaceArea(i)
	}
	return total
}

type edge struct {
	a, b int
}

// IsWatertight reports whether every edge is shared by exactly two faces.
// Open or degenerate geometry fails this and falls back to vertex sampling.
func (m *Mesh) IsWatertight() bool {
	if len(m.Faces) == 0 {
		return false
	}
	counts := make(map[edge]int, len(m.Faces)*3)
	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if a == b {
				return false
			}
			if a > b {
				a, b = b, a
			}
			counts[edge{a, b}]++
		}
	}
	for _, c := range counts {
		if c != 2 {
			return false
		}
	}
	return true
}
