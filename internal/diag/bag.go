package diag

// Bag collects diagnostics in detection order. It is append-only and capped:
// once max entries are stored, further adds are counted but dropped, so the
// caller can still report how much was truncated.
type Bag struct {
	items     []Diagnostic
	max       int
	truncated int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 1
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add appends a diagnostic, honoring the cap. Returns false when the
// diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		b.truncated++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddAll appends a slice of diagnostics, preserving their order.
func (b *Bag) AddAll(ds []Diagnostic) {
	for _, d := range ds {
		b.Add(d)
	}
}

// HasErrors reports whether at least one diagnostic is error severity.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether at least one diagnostic is warning severity
// or stronger.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Truncated returns how many diagnostics were dropped by the cap.
func (b *Bag) Truncated() int {
	return b.truncated
}

// Items returns the collected diagnostics in detection order.
// The returned slice aliases the Bag's storage; do not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends the other bag's diagnostics, keeping this bag's cap.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.AddAll(other.items)
	b.truncated += other.truncated
}
