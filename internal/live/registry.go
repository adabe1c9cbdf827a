package live

// Registry holds every race currently visible in the dashboard, keyed
// by race id, preserving the backend's returned order for list views.
// At most one snapshot is focused at a time; the focused snapshot is a
// clone, deliberately independent of the registry copy.
//
// The registry is owned by the controller's event loop and must only be
// touched from that goroutine.
type Registry struct {
	order   []string
	races   map[string]*RaceSnapshot
	focused *RaceSnapshot
}

func NewRegistry() *Registry {
	return &Registry{races: map[string]*RaceSnapshot{}}
}

// ReplaceAll installs the backend's current result set, dropping every
// race absent from it. The fetch is authoritative: un-persisted local
// appends are discarded, since the payload includes everything up to
// the backend's own response time. Live updates re-extend the track
// immediately after, so a transient rewind is acceptable.
func (r *Registry) ReplaceAll(snapshots []RaceSnapshot) {
	r.order = r.order[:0]
	r.races = make(map[string]*RaceSnapshot, len(snapshots))
	for i := range snapshots {
		snap := snapshots[i]
		if _, dup := r.races[snap.ID]; dup {
			continue
		}
		r.order = append(r.order, snap.ID)
		r.races[snap.ID] = &snap
	}
}

// Install replaces a single race wholesale, appending it to the display
// order if it is new.
func (r *Registry) Install(snap RaceSnapshot) {
	if _, ok := r.races[snap.ID]; !ok {
		r.order = append(r.order, snap.ID)
	}
	r.races[snap.ID] = &snap
}

func (r *Registry) Get(id string) (*RaceSnapshot, bool) {
	snap, ok := r.races[id]
	return snap, ok
}

func (r *Registry) Len() int {
	return len(r.order)
}

// List returns snapshots in backend display order.
func (r *Registry) List() []RaceSnapshot {
	out := make([]RaceSnapshot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.races[id])
	}
	return out
}

// Focus marks the race targeted by push reconciliation and map
// rendering. Re-focusing the already-focused race with no intervening
// events returns the same snapshot. Unknown ids leave focus untouched.
func (r *Registry) Focus(id string) (*RaceSnapshot, bool) {
	if r.focused != nil && r.focused.ID == id {
		return r.focused, true
	}
	snap, ok := r.races[id]
	if !ok {
		return nil, false
	}
	clone := snap.Clone()
	r.focused = &clone
	return r.focused, true
}

// FocusSnapshot installs a snapshot as the focused detail directly,
// used when a detail fetch carries richer data than the list entry.
func (r *Registry) FocusSnapshot(snap RaceSnapshot) *RaceSnapshot {
	clone := snap.Clone()
	r.focused = &clone
	return r.focused
}

func (r *Registry) Focused() *RaceSnapshot {
	return r.focused
}

func (r *Registry) Unfocus() {
	r.focused = nil
}
