package geometry

// PointCloud is a fixed-size set of points sampled from a mesh, centered at
// the origin and scaled to the unit sphere. Consumers treat it as read-only:
// the reference cloud is shared across all submission analyses.
type PointCloud []Vec3

// Centroid returns the mean of all points, or the zero vector for an
// empty cloud.
func (pc PointCloud) Centroid() Vec3 {
	if len(pc) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, p := range pc {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pc)))
}

// MaxNorm returns the largest point-to-origin distance.
func (pc PointCloud) MaxNorm() float64 {
	max := 0.0
	for _, p := range pc {
		if n := p.Norm(); n > max {
			max = n
		}
	}
	return max
}
