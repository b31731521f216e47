package reconcile

import (
	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

// patchChildren patches the child list old into new. The children live
// under parent right after the unit start (zero for the first position).
func (r *Reconciler) patchChildren(old, new []*vdom.Node, parent, start surface.Handle) {
	old, new = compact(old), compact(new)
	if len(old) == 0 && len(new) == 0 {
		return
	}
	switch keyModeOf(old, new) {
	case keysAll:
		r.patchKeyed(old, new, parent, start)
	case keysMixed:
		r.logger.Debug("reconcile: list mixes keyed and unkeyed children, patching by position",
			"code", luxerr.CodeMixedKeys, "parent", uint64(parent))
		r.patchUnkeyed(old, new, parent, start)
	default:
		r.patchUnkeyed(old, new, parent, start)
	}
}

type keyMode int

const (
	keysNone keyMode = iota
	keysAll
	keysMixed
)

func keyModeOf(old, new []*vdom.Node) keyMode {
	keyed, plain := 0, 0
	for _, list := range [][]*vdom.Node{old, new} {
		for _, n := range list {
			if n.IsKeyed() {
				keyed++
			} else {
				plain++
			}
		}
	}
	switch {
	case keyed == 0:
		return keysNone
	case plain == 0:
		return keysAll
	default:
		return keysMixed
	}
}

func (r *Reconciler) patchUnkeyed(old, new []*vdom.Node, parent, start surface.Handle) {
	if index := carried(old, new); index != nil {
		r.patchCarried(old, new, index, parent, start)
		return
	}

	common := min(len(old), len(new))
	prev := start
	for i := 0; i < common; i++ {
		r.patch(old[i], new[i], parent)
		if h := lastUnit(new[i]); h != 0 {
			prev = h
		}
	}
	for i := common; i < len(old); i++ {
		r.unmount(old[i], false, true)
	}
	for i := common; i < len(new); i++ {
		prev = r.renderAt(new[i], parent, prev)
	}
}

// carried returns the positions of the old nodes that appear again in new
// at another position, or nil when there are none. Cached child
// components and blocks are returned as the same node on every render.
func carried(old, new []*vdom.Node) map[*vdom.Node]int {
	var index map[*vdom.Node]int
	for j, o := range old {
		if !o.Mounted {
			continue
		}
		if index == nil {
			index = make(map[*vdom.Node]int, len(old))
		}
		index[o] = j
	}
	for k, n := range new {
		if j, ok := index[n]; ok && j != k {
			return index
		}
	}
	return nil
}

// patchCarried patches an unkeyed list in which nodes of the old list
// reappear. Those keep their units; the other old and new nodes are
// paired in order, and the result is placed like a keyed window.
func (r *Reconciler) patchCarried(old, new []*vdom.Node, index map[*vdom.Node]int, parent, start surface.Handle) {
	newToOld := make([]int, len(new))
	taken := make([]bool, len(old))
	for k, n := range new {
		newToOld[k] = -1
		if j, ok := index[n]; ok && !taken[j] {
			newToOld[k] = j
			taken[j] = true
		}
	}

	j := 0
	for k, n := range new {
		if newToOld[k] >= 0 || n.Mounted {
			continue
		}
		for j < len(old) && taken[j] {
			j++
		}
		if j == len(old) {
			break
		}
		taken[j] = true
		newToOld[k] = j
		r.patch(old[j], n, parent)
	}
	for j, o := range old {
		if !taken[j] {
			r.unmount(o, false, true)
		}
	}

	r.place(new, newToOld, false, parent, start)
}

func (r *Reconciler) patchKeyed(old, new []*vdom.Node, parent, start surface.Handle) {
	r.checkDuplicates(new, parent)

	i := 0
	e1, e2 := len(old)-1, len(new)-1

	// Common head.
	for i <= e1 && i <= e2 && old[i].Key == new[i].Key {
		r.patch(old[i], new[i], parent)
		i++
	}
	// Common tail.
	for i <= e1 && i <= e2 && old[e1].Key == new[e2].Key {
		r.patch(old[e1], new[e2], parent)
		e1--
		e2--
	}

	after := func(k int) surface.Handle {
		if k == 0 {
			return start
		}
		if h := lastUnit(new[k-1]); h != 0 {
			return h
		}
		return start
	}

	switch {
	case i > e1:
		prev := after(i)
		for ; i <= e2; i++ {
			prev = r.renderAt(new[i], parent, prev)
		}
	case i > e2:
		for ; i <= e1; i++ {
			r.unmount(old[i], false, true)
		}
	default:
		r.patchWindow(old[i:e1+1], new[i:e2+1], parent, after(i))
	}
}

// patchWindow patches the unmatched middle of a keyed list. Old nodes are
// matched to new ones by key; matched nodes in a longest increasing run of
// old positions stay put and every other matched node moves once.
func (r *Reconciler) patchWindow(old, new []*vdom.Node, parent, prev surface.Handle) {
	newToOld := make([]int, len(new))
	for k := range newToOld {
		newToOld[k] = -1
	}

	var find func(key string) int
	bruteForce := r.threshold > 0 && len(old) <= r.threshold && len(new) <= r.threshold
	if bruteForce {
		find = func(key string) int {
			for k, n := range new {
				if n.Key == key {
					return k
				}
			}
			return -1
		}
	} else {
		index := make(map[string]int, len(new))
		for k, n := range new {
			if _, dup := index[n.Key]; !dup {
				index[n.Key] = k
			}
		}
		find = func(key string) int {
			if k, ok := index[key]; ok {
				return k
			}
			return -1
		}
	}

	moved := false
	maxSeen := -1
	for j, o := range old {
		k := find(o.Key)
		if k < 0 || newToOld[k] >= 0 {
			r.unmount(o, false, true)
			continue
		}
		newToOld[k] = j
		if k < maxSeen {
			moved = true
		} else {
			maxSeen = k
		}
		r.patch(o, new[k], parent)
	}

	if moved {
		r.place(new, newToOld, bruteForce, parent, prev)
		return
	}
	for k, n := range new {
		if newToOld[k] < 0 {
			prev = r.renderAt(n, parent, prev)
			continue
		}
		if h := lastUnit(n); h != 0 {
			prev = h
		}
	}
}

// place puts new in order after prev. newToOld holds the old position
// whose units each node took over, or -1 for nodes still to render.
// Nodes in a longest increasing run of old positions stay put and every
// other matched node moves once.
func (r *Reconciler) place(new []*vdom.Node, newToOld []int, quadratic bool, parent, prev surface.Handle) {
	var stay []int
	if quadratic {
		stay = longestIncreasingQuadratic(newToOld)
	} else {
		stay = longestIncreasing(newToOld)
	}

	s := 0
	for k, n := range new {
		switch {
		case newToOld[k] < 0:
			prev = r.renderAt(n, parent, prev)
			continue
		case s >= len(stay) || stay[s] != k:
			r.moveAfter(n, parent, prev)
			r.instr.Moved()
		default:
			s++
		}
		if h := lastUnit(n); h != 0 {
			prev = h
		}
	}
}

// moveAfter moves every unit of n, in order, right after the unit after.
func (r *Reconciler) moveAfter(n *vdom.Node, parent, after surface.Handle) {
	prev := after
	for _, h := range units(n, nil) {
		if h == 0 {
			continue
		}
		r.surface.InsertAfter(parent, prev, h)
		prev = h
	}
}

func (r *Reconciler) checkDuplicates(list []*vdom.Node, parent surface.Handle) {
	seen := make(map[string]struct{}, len(list))
	for _, n := range list {
		if _, dup := seen[n.Key]; dup {
			r.logger.Warn("reconcile: duplicate key among siblings, using the first",
				"code", luxerr.CodeDuplicateKey, "key", n.Key, "parent", uint64(parent), "error", ErrDuplicateKey)
			r.instr.DuplicateKey()
			continue
		}
		seen[n.Key] = struct{}{}
	}
}
