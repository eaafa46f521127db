// Package reconcile computes keyed enter/update/exit sets between the
// rendered and the desired sequence of items. It knows nothing about what
// the items render to.
package reconcile

import (
	"errors"
	"fmt"
)

// ErrKeyConflict is matched by every *KeyConflictError.
var ErrKeyConflict = errors.New("duplicate reconciliation key")

// KeyConflictError reports a key used twice within one render pass.
type KeyConflictError struct {
	Key    any
	Side   string // "current" or "desired"
	First  int
	Second int
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("%s sequence: key %v at positions %d and %d", e.Side, e.Key, e.First, e.Second)
}

func (e *KeyConflictError) Is(target error) bool {
	return target == ErrKeyConflict
}

// Entry is one reconciled key. OldIndex is -1 for entering keys, NewIndex
// is -1 for exiting keys.
type Entry[K comparable] struct {
	Key      K
	OldIndex int
	NewIndex int
	// Moved is set on updates whose position relative to the other
	// retained keys changed.
	Moved bool
}

// Result groups entries by operation. Enter and Update are in desired
// order, Exit in current order.
type Result[K comparable] struct {
	Enter  []Entry[K]
	Update []Entry[K]
	Exit   []Entry[K]
	Order  []K
}

// Empty reports whether the diff changes nothing at all.
func (r Result[K]) Empty() bool {
	if len(r.Enter) > 0 || len(r.Exit) > 0 {
		return false
	}
	for _, u := range r.Update {
		if u.Moved {
			return false
		}
	}
	return true
}

func index[K comparable](keys []K, side string) (map[K]int, error) {
	idx := make(map[K]int, len(keys))
	for i, k := range keys {
		if first, dup := idx[k]; dup {
			return nil, &KeyConflictError{Key: k, Side: side, First: first, Second: i}
		}
		idx[k] = i
	}
	return idx, nil
}

// Diff reconciles current against desired.
func Diff[K comparable](current, desired []K) (Result[K], error) {
	var res Result[K]

	oldIdx, err := index(current, "current")
	if err != nil {
		return res, err
	}
	newIdx, err := index(desired, "desired")
	if err != nil {
		return res, err
	}

	res.Order = append([]K(nil), desired...)

	// Rank of each retained key among the retained keys in the old order;
	// an update moved if its rank changed.
	oldRank := make(map[K]int, len(current))
	rank := 0
	for _, k := range current {
		if _, kept := newIdx[k]; kept {
			oldRank[k] = rank
			rank++
		}
	}

	rank = 0
	for i, k := range desired {
		old, ok := oldIdx[k]
		if !ok {
			res.Enter = append(res.Enter, Entry[K]{Key: k, OldIndex: -1, NewIndex: i})
			continue
		}
		res.Update = append(res.Update, Entry[K]{
			Key:      k,
			OldIndex: old,
			NewIndex: i,
			Moved:    oldRank[k] != rank,
		})
		rank++
	}

	for i, k := range current {
		if _, ok := newIdx[k]; !ok {
			res.Exit = append(res.Exit, Entry[K]{Key: k, OldIndex: i, NewIndex: -1})
		}
	}

	return res, nil
}
