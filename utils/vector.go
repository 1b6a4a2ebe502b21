package utils

import "math"

func VecMaxAbs(v []float64) (max float64) {
	for _, val := range v {
		if math.Abs(val) > max {
			max = math.Abs(val)
		}
	}
	return
}

func Linspace(xmin, xmax float64, N int) (v []float64) {
	v = make([]float64, N)
	if N == 1 {
		v[0] = xmin
		return
	}
	h := (xmax - xmin) / float64(N-1)
	for i := range v {
		v[i] = xmin + float64(i)*h
	}
	return
}
