package gate

import "math"

var (
	identMat = [2][2]complex128{{1, 0}, {0, 1}}
	hMat     = [2][2]complex128{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
	xMat   = [2][2]complex128{{0, 1}, {1, 0}}
	yMat   = [2][2]complex128{{0, complex(0, -1)}, {complex(0, 1), 0}}
	zMat   = [2][2]complex128{{1, 0}, {0, -1}}
	sMat   = [2][2]complex128{{1, 0}, {0, complex(0, 1)}}
	sdgMat = [2][2]complex128{{1, 0}, {0, complex(0, -1)}}
	tMat   = [2][2]complex128{{1, 0}, {0, complex(math.Sqrt2/2, math.Sqrt2/2)}}
	tdgMat = [2][2]complex128{{1, 0}, {0, complex(math.Sqrt2/2, -math.Sqrt2/2)}}
)

func rxMat(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return [2][2]complex128{{c, s}, {s, c}}
}

func ryMat(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return [2][2]complex128{{c, -s}, {s, c}}
}

func rzMat(theta float64) [2][2]complex128 {
	neg := complex(math.Cos(-theta/2), math.Sin(-theta/2))
	pos := complex(math.Cos(theta/2), math.Sin(theta/2))
	return [2][2]complex128{{neg, 0}, {0, pos}}
}

// conjTranspose2 returns the adjoint of a 2x2 matrix.
func conjTranspose2(m [2][2]complex128) [2][2]complex128 {
	return [2][2]complex128{
		{cConj(m[0][0]), cConj(m[1][0])},
		{cConj(m[0][1]), cConj(m[1][1])},
	}
}

func cConj(c complex128) complex128 { return complex(real(c), -imag(c)) }
