package crawler

// Frontier is the FIFO queue of absolute URLs awaiting a visit attempt.
//
// Enqueue does not check for pending duplicates; callers skip URLs that are
// already visited when they come off the queue.
type Frontier struct {
	items []string
}

// NewFrontier creates a frontier seeded with urls in order.
func NewFrontier(urls ...string) *Frontier {
	f := &Frontier{items: make([]string, 0, len(urls))}
	f.items = append(f.items, urls...)
	return f
}

// Enqueue appends rawURL to the back of the queue.
func (f *Frontier) Enqueue(rawURL string) {
	f.items = append(f.items, rawURL)
}

// Dequeue pops the oldest URL. It returns false when the queue is empty.
func (f *Frontier) Dequeue() (string, bool) {
	if len(f.items) == 0 {
		return "", false
	}
	next := f.items[0]
	f.items[0] = ""
	f.items = f.items[1:]
	return next, true
}

// Len returns the number of pending entries, duplicates included.
func (f *Frontier) Len() int {
	return len(f.items)
}

// Empty reports whether nothing is pending.
func (f *Frontier) Empty() bool {
	return len(f.items) == 0
}

// VisitedSet records the routes that have been dequeued and attempted.
// Membership is by route (see Normalize), so URLs differing only in query
// or fragment count as the same page.
type VisitedSet struct {
	routes map[string]struct{}
}

// NewVisitedSet creates an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{routes: make(map[string]struct{})}
}

// Add marks rawURL's route as visited.
func (v *VisitedSet) Add(rawURL string) {
	v.routes[Normalize(rawURL)] = struct{}{}
}

// Has reports whether rawURL's route has been visited.
func (v *VisitedSet) Has(rawURL string) bool {
	_, ok := v.routes[Normalize(rawURL)]
	return ok
}

// Remove forgets rawURL's route so it can be dequeued again.
func (v *VisitedSet) Remove(rawURL string) {
	delete(v.routes, Normalize(rawURL))
}

// Len returns the number of visited routes.
func (v *VisitedSet) Len() int {
	return len(v.routes)
}
