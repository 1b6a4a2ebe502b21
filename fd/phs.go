package fd

import "math"

// The radial basis is the cubic polyharmonic spline phi(r) = r^3, which
// needs no shape parameter and, with polynomial augmentation, gives
// consistent derivative approximations on scattered nodes.

// phsDeriv evaluates (d/dx)^dx (d/dy)^dy phi(|d|) at offset d from the
// basis center. Only the orders in supportedOrders are reachable; callers
// validate first.
func phsDeriv(dx, dy int, d [2]float64) float64 {
	r := math.Hypot(d[0], d[1])
	switch {
	case dx == 0 && dy == 0:
		return r * r * r
	case dx == 1 && dy == 0:
		return 3 * r * d[0]
	case dx == 0 && dy == 1:
		return 3 * r * d[1]
	}
	// Second derivatives have a removable singularity at the center.
	if r == 0 {
		return 0
	}
	switch {
	case dx == 2 && dy == 0:
		return 3*r + 3*d[0]*d[0]/r
	case dx == 0 && dy == 2:
		return 3*r + 3*d[1]*d[1]/r
	case dx == 1 && dy == 1:
		return 3 * d[0] * d[1] / r
	}
	panic("fd: unchecked derivative order")
}

// polyExps enumerates the monomial exponents of the degree-2 augmentation
// basis. Degree 2 is the smallest that reproduces every supported operator
// exactly on polynomials.
var polyExps = [][2]int{
	{0, 0}, {1, 0}, {0, 1}, {2, 0}, {1, 1}, {0, 2},
}

// monoDeriv evaluates (d/dx)^dx (d/dy)^dy of x^e0 y^e1 at offset d.
func monoDeriv(exp [2]int, dx, dy int, d [2]float64) float64 {
	e0, e1 := exp[0], exp[1]
	if e0 < dx || e1 < dy {
		return 0
	}
	c := 1.0
	for k := 0; k < dx; k++ {
		c *= float64(e0 - k)
	}
	for k := 0; k < dy; k++ {
		c *= float64(e1 - k)
	}
	return c * math.Pow(d[0], float64(e0-dx)) * math.Pow(d[1], float64(e1-dy))
}
