package scheduler

import "github.com/saferun-io/tee-fabric/internal/packet"

// Map transforms each live item's buffer in place. A returned error aborts
// that item; it does not stop the rest of the batch.
func Map(fn func(*packet.Buffer) error) Stage {
	return func(items []Item) []Item {
		for i := range items {
			if !items[i].live() {
				continue
			}
			if err := fn(items[i].Buf); err != nil {
				items[i].abort(err)
			}
		}
		return items
	}
}

// Filter drops any live item for which predicate returns false.
func Filter(predicate func(*packet.Buffer) bool) Stage {
	return func(items []Item) []Item {
		for i := range items {
			if !items[i].live() {
				continue
			}
			if !predicate(items[i].Buf) {
				items[i].drop()
			}
		}
		return items
	}
}

// FilterMap combines Map and Filter: fn transforms the buffer and reports
// whether to keep it. An error aborts the item; keep=false drops it.
func FilterMap(fn func(*packet.Buffer) (keep bool, err error)) Stage {
	return func(items []Item) []Item {
		for i := range items {
			if !items[i].live() {
				continue
			}
			keep, err := fn(items[i].Buf)
			switch {
			case err != nil:
				items[i].abort(err)
			case !keep:
				items[i].drop()
			}
		}
		return items
	}
}

// ForEach runs fn for its side effects on every live item, without
// altering the buffer. A returned error aborts that item.
func ForEach(fn func(*packet.Buffer) error) Stage {
	return func(items []Item) []Item {
		for i := range items {
			if !items[i].live() {
				continue
			}
			if err := fn(items[i].Buf); err != nil {
				items[i].abort(err)
			}
		}
		return items
	}
}

// Emit marks every still-live item as resolved for transmission as-is.
// Operators appended after Emit have no effect on packets that passed
// through it, since Emit already resolved them.
func Emit() Stage {
	return func(items []Item) []Item {
		for i := range items {
			if items[i].live() {
				items[i].emit()
			}
		}
		return items
	}
}

// GroupBy splits live items into subgroups keyed by selector, runs each
// subgroup through its matching Stage in branches (falling back to
// def when no branch matches, if def is non-nil), then scatters results
// back into their original batch positions.
func GroupBy(selector func(*packet.Buffer) string, branches map[string]Stage, def Stage) Stage {
	return func(items []Item) []Item {
		groups := make(map[string][]int)
		for i := range items {
			if !items[i].live() {
				continue
			}
			key := selector(items[i].Buf)
			groups[key] = append(groups[key], i)
		}
		for key, indices := range groups {
			stage := branches[key]
			if stage == nil {
				if def == nil {
					continue
				}
				stage = def
			}
			sub := make([]Item, len(indices))
			for j, idx := range indices {
				sub[j] = items[idx]
			}
			sub = stage(sub)
			for j, idx := range indices {
				items[idx] = sub[j]
			}
		}
		return items
	}
}

// Compose chains stages left to right into one Stage.
func Compose(stages ...Stage) Stage {
	return func(items []Item) []Item {
		for _, s := range stages {
			items = s(items)
		}
		return items
	}
}
