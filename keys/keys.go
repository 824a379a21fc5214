// Package keys derives cache keys for airdropcache entries.
//
// Two shapes are used:
//
//	<prefix><kind>_<id>                     - single entries (e.g. registry lookups)
//	<prefix>{<chain>_<airdrop>}_<address>   - per-user batch entries
//
// The braces in batch keys are a shard hash-tag: redis cluster (and other
// backends following the same rule) hash only the first {...} section, so
// every user of one (chain, airdrop) pair lands in the same slot and a
// single MGET can read them all. Prefixes must therefore not contain '{'.
//
// Identifiers are lowercased for the key only. Index remembers the spelling
// each caller used so results can be handed back in that casing.
package keys

import (
	"strconv"
	"strings"
)

// Normalize returns the canonical form of an identifier used inside keys.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ValidPrefix reports whether prefix can be placed in front of a hash-tag.
func ValidPrefix(prefix string) bool {
	return !strings.ContainsAny(prefix, "{}")
}

// Single returns prefix + kind + "_" + Normalize(id).
func Single(prefix, kind, id string) string {
	return prefix + kind + "_" + Normalize(id)
}

// HashTag returns the "{chain_airdrop}" shard tag.
func HashTag(chainID, airdropID uint64) string {
	var b strings.Builder
	b.Grow(2 + 20 + 1 + 20)
	b.WriteByte('{')
	b.WriteString(strconv.FormatUint(chainID, 10))
	b.WriteByte('_')
	b.WriteString(strconv.FormatUint(airdropID, 10))
	b.WriteByte('}')
	return b.String()
}

// Batch returns prefix + HashTag(chainID, airdropID) + "_" + Normalize(address).
func Batch(prefix string, chainID, airdropID uint64, address string) string {
	return prefix + HashTag(chainID, airdropID) + "_" + Normalize(address)
}

// Index maps normalized identifiers back to the spelling supplied by the
// caller. When two inputs differ only by case, the first one wins and the
// rest collapse into it.
type Index struct {
	orig  map[string]string
	order []string
}

// NewIndex builds an Index over ids. Empty identifiers are kept as-is so the
// caller can decide whether they are an error.
func NewIndex(ids []string) *Index {
	ix := &Index{
		orig:  make(map[string]string, len(ids)),
		order: make([]string, 0, len(ids)),
	}
	for _, id := range ids {
		n := Normalize(id)
		if _, dup := ix.orig[n]; dup {
			continue
		}
		ix.orig[n] = id
		ix.order = append(ix.order, n)
	}
	return ix
}

// Len is the number of distinct normalized identifiers.
func (ix *Index) Len() int { return len(ix.order) }

// Normalized returns the distinct normalized identifiers in input order.
// The returned slice must not be modified.
func (ix *Index) Normalized() []string { return ix.order }

// Original returns the caller's spelling for a normalized identifier.
func (ix *Index) Original(normalized string) (string, bool) {
	o, ok := ix.orig[normalized]
	return o, ok
}

// Lookup normalizes id and returns the caller's spelling for it.
func (ix *Index) Lookup(id string) (string, bool) {
	return ix.Original(Normalize(id))
}

// Originals translates normalized identifiers back to caller spellings,
// skipping any that are not part of the index.
func (ix *Index) Originals(normalized []string) []string {
	out := make([]string, 0, len(normalized))
	for _, n := range normalized {
		if o, ok := ix.orig[n]; ok {
			out = append(out, o)
		}
	}
	return out
}
