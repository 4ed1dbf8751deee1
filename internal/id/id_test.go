package id

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsUniqueAndSorted(t *testing.T) {
	const n = 1000

	ids := make([]string, n)
	seen := make(map[string]bool, n)
	for i := range ids {
		ids[i] = New()
		require.Len(t, ids[i], 26)
		require.False(t, seen[ids[i]], "duplicate ULID")
		seen[ids[i]] = true
	}

	// Generation order must match lexicographic order, even within one
	// millisecond.
	assert.True(t, sort.StringsAreSorted(ids))
}
