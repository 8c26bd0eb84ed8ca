package route

// History is a back stack of visited routes. The zero value is empty;
// Current on an empty history is Home.
type History struct {
	stack []Route
}

// Current returns the route on top of the stack.
func (h *History) Current() Route {
	if len(h.stack) == 0 {
		return Home
	}
	return h.stack[len(h.stack)-1]
}

// Push records a new visit. Pushing the current route again is a no-op.
func (h *History) Push(r Route) {
	if len(h.stack) > 0 && h.Current() == r {
		return
	}
	h.stack = append(h.stack, r)
}

// Replace overwrites the current entry, so going back skips it.
func (h *History) Replace(r Route) {
	if len(h.stack) == 0 {
		h.stack = append(h.stack, r)
		return
	}
	h.stack[len(h.stack)-1] = r
	// Collapse a duplicate left behind by the overwrite.
	if n := len(h.stack); n > 1 && h.stack[n-2] == r {
		h.stack = h.stack[:n-1]
	}
}

// Back pops the current entry and returns the new current route. It reports
// false when there is nothing to go back to.
func (h *History) Back() (Route, bool) {
	if len(h.stack) <= 1 {
		return h.Current(), false
	}
	h.stack = h.stack[:len(h.stack)-1]
	return h.Current(), true
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.stack)
}
