package engine

// mirror returns the reflected neighbours of position i at distance k in a
// signal of length n. The left neighbour reflects about 0 and the right one
// about n-1, so with k < n both indices stay inside [0, n).
func mirror(i, k, n int) (left, right int) {
	left = i - k
	if i < k {
		left = k - i
	}
	right = i + k
	if i+k >= n {
		right = n - ((k + i) % n) - 2
	}
	return left, right
}

// window addresses the centre values of n consecutive output positions and
// their neighbours. In the row pass, neighbours at distance k sit k elements
// away and never cross a border. In the column pass they sit whole rows away
// and are mirrored at the top and bottom of the image.
type window struct {
	in []float32
	at int // index of the first centre value
	n  int

	column bool
	y      int // image row of the centre values
	height int
	stride int
}

func (w *window) centre() []float32 {
	return w.in[w.at : w.at+w.n]
}

// pair returns the right and left neighbour spans at distance k.
func (w *window) pair(k int) (right, left []float32) {
	if !w.column {
		return w.in[w.at+k : w.at+k+w.n], w.in[w.at-k : w.at-k+w.n]
	}
	l, r := mirror(w.y, k, w.height)
	x := w.at - w.y*w.stride
	r0, l0 := r*w.stride+x, l*w.stride+x
	return w.in[r0 : r0+w.n], w.in[l0 : l0+w.n]
}
