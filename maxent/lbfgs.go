package maxent

import "math"

// history keeps the last m curvature pairs (s = w' - w, y = g' - g) used to
// approximate the inverse Hessian. Pair buffers are allocated once and
// recycled as a ring.
type history struct {
	s, y  [][]float64
	rho   []float64
	head  int // slot the next pair is written to
	count int
	alpha []float64
}

func newHistory(n, m int) *history {
	m = max(m, 1)
	h := &history{
		s:     make([][]float64, m),
		y:     make([][]float64, m),
		rho:   make([]float64, m),
		alpha: make([]float64, m),
	}
	for i := range m {
		h.s[i] = make([]float64, n)
		h.y[i] = make([]float64, n)
	}
	return h
}

func (h *history) len() int { return h.count }

func (h *history) clear() {
	h.head = 0
	h.count = 0
}

// slot maps age (0 = newest) to a ring index.
func (h *history) slot(age int) int {
	m := len(h.s)
	return ((h.head-1-age)%m + m) % m
}

// push records the step from w to wNew. Pairs without positive curvature
// are dropped so the approximation stays positive definite.
func (h *history) push(w, wNew, grad, gradNew []float64) {
	sy := 0.0
	for i := range w {
		sy += (wNew[i] - w[i]) * (gradNew[i] - grad[i])
	}
	if sy <= 0 {
		return
	}
	s, y := h.s[h.head], h.y[h.head]
	for i := range s {
		s[i] = wNew[i] - w[i]
		y[i] = gradNew[i] - grad[i]
	}
	h.rho[h.head] = 1 / sy
	h.head = (h.head + 1) % len(h.s)
	h.count = min(h.count+1, len(h.s))
}

// direction writes the quasi-Newton descent direction -H*grad into dir.
// With no history it is the steepest descent direction.
func (h *history) direction(grad, dir []float64) {
	for i, g := range grad {
		dir[i] = -g
	}
	if h.count == 0 {
		return
	}

	for age := range h.count {
		k := h.slot(age)
		h.alpha[age] = h.rho[k] * dot(h.s[k], dir)
		axpy(-h.alpha[age], h.y[k], dir)
	}

	newest := h.slot(0)
	if yy := dot(h.y[newest], h.y[newest]); yy > 0 {
		gamma := dot(h.s[newest], h.y[newest]) / yy
		for i := range dir {
			dir[i] *= gamma
		}
	}

	for age := h.count - 1; age >= 0; age-- {
		k := h.slot(age)
		beta := h.rho[k] * dot(h.y[k], dir)
		axpy(h.alpha[age]-beta, h.s[k], dir)
	}
}

// axpy computes y += a*x.
func axpy(a float64, x, y []float64) {
	for i, v := range x {
		y[i] += a * v
	}
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
