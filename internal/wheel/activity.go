package wheel

// windowSize is how many polls of the latest reading id feed the
// liveness check.
const windowSize = 3

// ActivityWindow decides whether the wheel is currently turning. It holds
// the latest reading id seen on each of the last few ticks; the wheel
// counts as running only when every tick in the window brought a fresh
// reading. Debouncing of individual sensor bounces happens later, in
// turn counting.
type ActivityWindow struct {
	ids  [windowSize]uint64
	n    int
	next int
}

// Observe records the latest reading id seen on this tick, dropping the
// oldest sample once the window is full. It is called every tick
// regardless of the outcome.
func (w *ActivityWindow) Observe(latestID uint64) {
	w.ids[w.next] = latestID
	w.next = (w.next + 1) % windowSize
	if w.n < windowSize {
		w.n++
	}
}

// Running reports whether the observed ids are strictly increasing across
// the whole window. Before the window is warm it always reports false.
func (w *ActivityWindow) Running() bool {
	if w.n < windowSize {
		return false
	}
	// Oldest sample sits at w.next once the window is full.
	prev := w.ids[w.next]
	for i := 1; i < windowSize; i++ {
		cur := w.ids[(w.next+i)%windowSize]
		if cur <= prev {
			return false
		}
		prev = cur
	}
	return true
}
