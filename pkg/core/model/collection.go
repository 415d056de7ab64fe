package model

// Deduplicating insertion for model collections. Readers build an element
// more than once as its children trickle in; the completed candidate must
// supersede the earlier, equal-but-differently-ordered entry, and callers
// must keep working with whichever element actually ended up in the set.

// Index is an auxiliary lookup that keeps insertion from scanning the
// whole collection on every call. The key function is a cheap
// discriminator (kind + label + compartment id, say), not full equality:
// candidates sharing a key are confirmed with Equal. Without an index,
// AddOrReplaceElement degrades to a linear scan, which is fine for small
// maps and unacceptable for maps with thousands of glyphs.
type Index[E Element] struct {
	key   func(E) string
	byKey map[string][]E
}

// NewIndex creates an index over the given discriminator key.
func NewIndex[E Element](key func(E) string) *Index[E] {
	return &Index[E]{key: key, byKey: make(map[string][]E)}
}

func (ix *Index[E]) candidates(e E) []E {
	return ix.byKey[ix.key(e)]
}

func (ix *Index[E]) add(e E) {
	k := ix.key(e)
	ix.byKey[k] = append(ix.byKey[k], e)
}

// Find returns the member structurally equal to e, if one is indexed.
// Readers use it to re-resolve a candidate to whichever duplicate survived
// once a whole batch of insertions has settled.
func (ix *Index[E]) Find(e E) (E, bool) {
	for _, m := range ix.byKey[ix.key(e)] {
		if m.Equal(e) {
			return m, true
		}
	}
	var zero E
	return zero, false
}

func (ix *Index[E]) remove(e E) {
	k := ix.key(e)
	members := ix.byKey[k]
	for i, m := range members {
		if m.ElementID() == e.ElementID() && m.Equal(e) {
			ix.byKey[k] = append(members[:i], members[i+1:]...)
			return
		}
	}
}

// AddOrReplaceElement inserts candidate into the set, which is keyed by
// structural equality. When a structurally equal member already exists,
// the tie-break decides: tieBreak(candidate, existing) true replaces the
// existing member with candidate; false keeps the set unchanged. The
// returned element is always the one actually stored, so callers can keep
// building against it rather than a discarded duplicate.
//
// The conventional tie-break is "candidate id sorts lower than existing
// id". Downstream annotation attachment keys off the surviving instance,
// so changing the comparator changes which duplicate accumulates notes.
//
// idx may be nil, in which case every insertion scans the whole set.
func AddOrReplaceElement[E Element](candidate E, set *[]E, tieBreak func(candidate, existing E) bool, idx *Index[E]) E {
	members := *set
	if idx != nil {
		members = idx.candidates(candidate)
	}
	for _, existing := range members {
		if !candidate.Equal(existing) {
			continue
		}
		if !tieBreak(candidate, existing) {
			return existing
		}
		for i, m := range *set {
			if m.ElementID() == existing.ElementID() && m.Equal(existing) {
				(*set)[i] = candidate
				break
			}
		}
		if idx != nil {
			idx.remove(existing)
			idx.add(candidate)
		}
		return candidate
	}

	*set = append(*set, candidate)
	if idx != nil {
		idx.add(candidate)
	}
	return candidate
}
