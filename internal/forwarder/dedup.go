package forwarder

import "sync"

const DefaultDedupLimit = 200

// DedupCache remembers which signal ids have already been forwarded.
type DedupCache interface {
	// Admit records the ids observed in one poll and returns those not seen before, in
	// input order. reset reports whether the cache discarded its previous contents.
	Admit(ids []string) (unseen []string, reset bool)
	Contains(id string) bool
	Len() int
}

// CoarseDedup is a set that, once it grows past its limit, is replaced wholesale by the
// ids of the next poll rather than pruned.
type CoarseDedup struct {
	limit int

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewCoarseDedup(limit int) *CoarseDedup {
	if limit <= 0 {
		limit = DefaultDedupLimit
	}
	return &CoarseDedup{limit: limit, seen: make(map[string]struct{})}
}

func (d *CoarseDedup) Admit(ids []string) ([]string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unseen := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := d.seen[id]; !ok {
			unseen = append(unseen, id)
		}
	}

	if len(d.seen) > d.limit {
		d.seen = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			d.seen[id] = struct{}{}
		}
		return unseen, true
	}
	for _, id := range unseen {
		d.seen[id] = struct{}{}
	}
	return unseen, false
}

func (d *CoarseDedup) Contains(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[id]
	return ok
}

func (d *CoarseDedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
