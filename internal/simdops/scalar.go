package simdops

const scalarName = "scalar"

// Scalar is the one-value-at-a-time backend.
type Scalar struct{}

// NewScalar returns the scalar backend.
func NewScalar() Scalar { return Scalar{} }

func (Scalar) Name() string { return scalarName }
func (Scalar) Lanes() int   { return 1 }

func (Scalar) Scale(dst, src []float32, s float32) {
	src = src[:len(dst)]
	for i := range dst {
		dst[i] = src[i] * s
	}
}

func (Scalar) Add(dst, a, b []float32) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func (Scalar) Sub(dst, a, b []float32) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

func (Scalar) MulAdd(dst, a []float32, s float32) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = FMA32(a[i], s, dst[i])
	}
}
