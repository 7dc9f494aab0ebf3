package utils

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// SortedKeys returns the keys of m in ascending order. Operation
// payloads must be deterministic, so every map traversal that ends up
// serialized goes through here.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
