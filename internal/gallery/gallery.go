package gallery

// Placeholder is shown in place of a cover when a product has no images.
const Placeholder = "/static/placeholder.webp"

// Gallery is an ordered list of image references; index 0 is the cover.
// Swaps are the only reordering primitive.
type Gallery struct {
	refs []string
}

func New(refs ...string) *Gallery {
	g := &Gallery{}
	for _, r := range refs {
		if r != "" {
			g.refs = append(g.refs, r)
		}
	}
	return g
}

// FromRecord reads a stored product's images. The gallery wins when it is
// non-empty; otherwise the legacy single image becomes a one-element
// gallery. Nothing is written back.
func FromRecord(imageURLs []string, legacy string) *Gallery {
	g := New(imageURLs...)
	if g.Len() == 0 && legacy != "" {
		g.refs = []string{legacy}
	}
	return g
}

func (g *Gallery) Len() int { return len(g.refs) }

// Refs returns a copy of the ordered references.
func (g *Gallery) Refs() []string {
	out := make([]string, len(g.refs))
	copy(out, g.refs)
	return out
}

func (g *Gallery) Append(ref string) {
	g.refs = append(g.refs, ref)
}

// RemoveAt drops the element at i. Out of range is a no-op.
func (g *Gallery) RemoveAt(i int) bool {
	if !g.valid(i) {
		return false
	}
	g.refs = append(g.refs[:i:i], g.refs[i+1:]...)
	return true
}

// MoveUp swaps i with i-1. No-op at the head or out of range.
func (g *Gallery) MoveUp(i int) bool {
	if !g.valid(i) || i == 0 {
		return false
	}
	g.refs[i-1], g.refs[i] = g.refs[i], g.refs[i-1]
	return true
}

// MoveDown swaps i with i+1. No-op at the tail or out of range.
func (g *Gallery) MoveDown(i int) bool {
	if !g.valid(i) || i == len(g.refs)-1 {
		return false
	}
	g.refs[i], g.refs[i+1] = g.refs[i+1], g.refs[i]
	return true
}

func (g *Gallery) Cover() string {
	if len(g.refs) == 0 {
		return Placeholder
	}
	return g.refs[0]
}

func (g *Gallery) valid(i int) bool {
	return i >= 0 && i < len(g.refs)
}

// Slide advances a slideshow position by delta, wrapping in both
// directions. An empty gallery always yields 0.
func Slide(n, current, delta int) int {
	if n <= 0 {
		return 0
	}
	i := (current + delta) % n
	if i < 0 {
		i += n
	}
	return i
}
