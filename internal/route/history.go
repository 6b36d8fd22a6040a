package route

// History is the navigation stack. The last entry is the current path.
type History struct {
	stack []string
}

// NewHistory starts a history at path.
func NewHistory(path string) *History {
	return &History{stack: []string{Clean(path)}}
}

// Current returns the path on top of the stack.
func (h *History) Current() string {
	if len(h.stack) == 0 {
		return PathInbox
	}
	return h.stack[len(h.stack)-1]
}

// Push navigates to path, keeping the current entry for Back. Pushing the
// current path again is a no-op.
func (h *History) Push(path string) {
	path = Clean(path)
	if len(h.stack) > 0 && h.Current() == path {
		return
	}
	h.stack = append(h.stack, path)
}

// Replace swaps the current entry for path.
func (h *History) Replace(path string) {
	path = Clean(path)
	if len(h.stack) == 0 {
		h.stack = []string{path}
		return
	}
	h.stack[len(h.stack)-1] = path
}

// Back pops the current entry. It reports false when there is nothing to
// go back to.
func (h *History) Back() bool {
	if len(h.stack) < 2 {
		return false
	}
	h.stack = h.stack[:len(h.stack)-1]
	return true
}

// Len returns the depth of the stack.
func (h *History) Len() int {
	return len(h.stack)
}
