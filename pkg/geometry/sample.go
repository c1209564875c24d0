package geometry

import (
	"math/rand"
	"sort"
)

// SampleCountDefault is the number of points drawn per cloud.
const SampleCountDefault = 2048

// Sampler converts meshes into normalized point clouds. The rand source is
// injected so batch runs can be made reproducible.
type Sampler struct {
	Count int
	rng   *rand.Rand
}

// NewSampler returns a sampler producing count points per mesh.
func NewSampler(count int, seed int64) *Sampler {
	if count < 1 {
		count = SampleCountDefault
	}
	return &Sampler{
		Count: count,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Sample draws exactly Count points from the mesh and normalizes them to a
// centered unit sphere. Watertight meshes are sampled uniformly over the
// surface by face area; open geometry falls back to the existing vertices.
func (s *Sampler) Sample(m *Mesh) (PointCloud, error) {
	if m == nil || len(m.Vertices) == 0 {
		return nil, ErrEmptyMesh
	}

	var points PointCloud
	if m.IsWatertight() && m.SurfaceArea() > 0 {
		points = s.sampleSurface(m)
	} else {
		points = s.sampleVertices(m)
	}

	return normalize(points), nil
}

// sampleSurface draws points with probability proportional to face area.
func (s *Sampler) sampleSurface(m *Mesh) PointCloud {
	cumulative := make([]float64, len(m.Faces))
	total := 0.0
	for i := range m.Faces {
		total += m.FaceArea(i)
		cumulative[i] = total
	}

	points := make(PointCloud, s.Count)
	for i := range points {
		r := s.rng.Float64() * total
		fi := sort.SearchFloat64s(cumulative, r)
		if fi >= len(m.Faces) {
			fi = len(m.Faces) - 1
		}
		points[i] = s.randomPointOn(m, fi)
	}
	return points
}

// randomPointOn picks a uniform barycentric point on face fi.
func (s *Sampler) randomPointOn(m *Mesh, fi int) Vec3 {
	f := m.Faces[fi]
	a := m.Vertices[f[0]]
	b := m.Vertices[f[1]]
	c := m.Vertices[f[2]]

	u := s.rng.Float64()
	v := s.rng.Float64()
	if u+v > 1 {
		u = 1 - u
		v = 1 - v
	}
	return a.Add(b.Sub(a).Scale(u)).Add(c.Sub(a).Scale(v))
}

// sampleVertices draws from the vertex set: without replacement when there
// are enough vertices, with replacement otherwise so the cloud still has
// exactly Count points.
func (s *Sampler) sampleVertices(m *Mesh) PointCloud {
	points := make(PointCloud, 0, s.Count)
	if len(m.Vertices) >= s.Count {
		for _, idx := range s.rng.Perm(len(m.Vertices))[:s.Count] {
			points = append(points, m.Vertices[idx])
		}
		return points
	}
	for i := 0; i < s.Count; i++ {
		points = append(points, m.Vertices[s.rng.Intn(len(m.Vertices))])
	}
	return points
}

// normalize centers the cloud on its centroid and scales the farthest point
// to distance 1. A zero-extent cloud is centered but left unscaled.
func normalize(points PointCloud) PointCloud {
	centroid := points.Centroid()
	for i := range points {
		points[i] = points[i].Sub(centroid)
	}
	if scale := points.MaxNorm(); scale > 0 {
		for i := range points {
			points[i] = points[i].Scale(1 / scale)
		}
	}
	return points
}
