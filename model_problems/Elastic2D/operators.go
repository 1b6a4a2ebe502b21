package Elastic2D

import "github.com/notargets/mfree/fd"

// Material holds the Lame parameters of the isotropic linear-elastic
// constitutive law.
type Material struct {
	Lambda, Mu float64
}

// BodyForceTerms expands the interior equilibrium operator (divergence of
// stress under plane strain) into one derivative term list per directional
// block: row band x couples to (xx, xy), row band y to (yx, yy).
func (mt Material) BodyForceTerms() (xx, xy, yx, yy []fd.Term) {
	l, m := mt.Lambda, mt.Mu
	xx = fd.Join(fd.Scale(l+2*m, fd.D(2, 0)), fd.Scale(m, fd.D(0, 2)))
	xy = fd.Scale(l+m, fd.D(1, 1))
	yx = fd.Scale(l+m, fd.D(1, 1))
	yy = fd.Join(fd.Scale(m, fd.D(2, 0)), fd.Scale(l+2*m, fd.D(0, 2)))
	return
}

// tractionContrib is one first-derivative contribution to a surface
// traction block, scaled per row by the named normal component.
type tractionContrib struct {
	useNy bool // scale rows by n_y instead of n_x
	terms []fd.Term
}

// SurfaceForceContribs expands the traction operator t = sigma . n into
// per-block contributions. The normal enters as a per-row diagonal scaling,
// so each block is a sum of weight matrices for fixed term lists:
//
//	t_x = n_x[(l+2m) u_x,x + l u_y,y] + n_y m (u_x,y + u_y,x)
//	t_y = n_x m (u_x,y + u_y,x)       + n_y[l u_x,x + (l+2m) u_y,y]
func (mt Material) SurfaceForceContribs() (xx, xy, yx, yy []tractionContrib) {
	l, m := mt.Lambda, mt.Mu
	xx = []tractionContrib{
		{useNy: false, terms: fd.Scale(l+2*m, fd.D(1, 0))},
		{useNy: true, terms: fd.Scale(m, fd.D(0, 1))},
	}
	xy = []tractionContrib{
		{useNy: false, terms: fd.Scale(l, fd.D(0, 1))},
		{useNy: true, terms: fd.Scale(m, fd.D(1, 0))},
	}
	yx = []tractionContrib{
		{useNy: false, terms: fd.Scale(m, fd.D(0, 1))},
		{useNy: true, terms: fd.Scale(l, fd.D(1, 0))},
	}
	yy = []tractionContrib{
		{useNy: false, terms: fd.Scale(m, fd.D(1, 0))},
		{useNy: true, terms: fd.Scale(l+2*m, fd.D(0, 1))},
	}
	return
}

// DisplacementTerms is the identity interpolation operator used by the
// roller normal-displacement equation; the off-diagonal blocks are zero.
func DisplacementTerms() []fd.Term {
	return fd.D(0, 0)
}
