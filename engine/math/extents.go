package math

/**
 * @brief Returns an extents whose min is +infinity and max is -infinity,
 * suitable as the starting accumulator for a union.
 */
func NewExtents3DEmpty() Extents3D {
	return Extents3D{
		Min: Vec3{K_INFINITY, K_INFINITY, K_INFINITY},
		Max: Vec3{-K_INFINITY, -K_INFINITY, -K_INFINITY},
	}
}

/**
 * @brief Grows this extents to contain the provided point.
 */
func (e Extents3D) Expand(p Vec3) Extents3D {
	if p.X < e.Min.X {
		e.Min.X = p.X
	}
	if p.Y < e.Min.Y {
		e.Min.Y = p.Y
	}
	if p.Z < e.Min.Z {
		e.Min.Z = p.Z
	}
	if p.X > e.Max.X {
		e.Max.X = p.X
	}
	if p.Y > e.Max.Y {
		e.Max.Y = p.Y
	}
	if p.Z > e.Max.Z {
		e.Max.Z = p.Z
	}
	return e
}

/**
 * @brief Returns the union of this extents and other.
 */
func (e Extents3D) Union(other Extents3D) Extents3D {
	return e.Expand(other.Min).Expand(other.Max)
}

/**
 * @brief Returns the geometric center of this extents.
 */
func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

/**
 * @brief Computes the extents spanning all provided positions.
 */
func ExtentsFromPositions(positions []Vec3) Extents3D {
	out := NewExtents3DEmpty()
	for _, p := range positions {
		out = out.Expand(p)
	}
	return out
}
