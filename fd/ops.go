package fd

import "fmt"

// Term is one (d/dx)^Dx (d/dy)^Dy contribution, scaled by Coeff. An
// operator is a list of terms; the closed term-list form replaces runtime
// operator dispatch, so every operator an assembly uses is a fixed table.
type Term struct {
	Dx, Dy int
	Coeff  float64
}

// D is the single partial derivative of the given orders.
func D(dx, dy int) []Term {
	return []Term{{Dx: dx, Dy: dy, Coeff: 1}}
}

// Scale returns the term list scaled by c.
func Scale(c float64, terms []Term) (out []Term) {
	out = make([]Term, len(terms))
	for i, t := range terms {
		out[i] = Term{Dx: t.Dx, Dy: t.Dy, Coeff: c * t.Coeff}
	}
	return
}

// Join concatenates term lists into one operator.
func Join(lists ...[]Term) (out []Term) {
	for _, l := range lists {
		out = append(out, l...)
	}
	return
}

var supportedOrders = map[[2]int]struct{}{
	{0, 0}: {}, {1, 0}: {}, {0, 1}: {},
	{2, 0}: {}, {1, 1}: {}, {0, 2}: {},
}

func checkTerms(terms []Term) error {
	if len(terms) == 0 {
		return fmt.Errorf("%w: empty operator", ErrUnsupportedOperator)
	}
	for _, t := range terms {
		if t.Dx < 0 || t.Dy < 0 {
			return fmt.Errorf("%w: negative order (%d,%d)", ErrUnsupportedOperator, t.Dx, t.Dy)
		}
		if _, ok := supportedOrders[[2]int{t.Dx, t.Dy}]; !ok {
			return fmt.Errorf("%w: (%d,%d)", ErrUnsupportedOperator, t.Dx, t.Dy)
		}
	}
	return nil
}

// interpolationOnly reports whether every term is a pure identity term,
// the one case where stencils smaller than the polynomial basis are legal.
func interpolationOnly(terms []Term) bool {
	for _, t := range terms {
		if t.Dx != 0 || t.Dy != 0 {
			return false
		}
	}
	return true
}

// encodeTerms flattens a term list for cache keying.
func encodeTerms(terms []Term) (flat []float64) {
	flat = make([]float64, 0, 3*len(terms))
	for _, t := range terms {
		flat = append(flat, float64(t.Dx), float64(t.Dy), t.Coeff)
	}
	return
}
