package similar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNearDuplicate(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "ABC", "ABC", false},
		{"empty identical", "", "", false},
		{"insertion at end", "ABC", "ABCD", true},
		{"insertion at start", "ABC", "XABC", true},
		{"insertion in middle", "ABC", "ABXC", true},
		{"deletion", "ABCD", "ACD", true},
		{"substitution", "ABC", "AXC", true},
		{"all different", "ABC", "XYZ", false},
		{"two substitutions", "ABCD", "AXCY", false},
		{"length gap of two", "ABC", "ABCDE", false},
		{"transposition", "ABCD", "ABDC", false},
		{"substitution plus insertion", "ABC", "AXCD", false},
		{"single char vs empty", "A", "", true},
		{"single char substitution", "A", "B", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNearDuplicate(tt.a, tt.b))
			assert.Equal(t, tt.want, IsNearDuplicate(tt.b, tt.a), "must be symmetric")
		})
	}
}

func TestIsNearDuplicate_SingleDeletionProperty(t *testing.T) {
	longer := "QWERT"
	for i := range longer {
		shorter := longer[:i] + longer[i+1:]
		assert.True(t, IsNearDuplicate(shorter, longer), "deleting index %d of %s", i, longer)
	}

	// A string one longer that is not reachable by a single deletion.
	assert.False(t, IsNearDuplicate("QWER", "QXERZ"))
}

func TestIsNearDuplicate_HammingProperty(t *testing.T) {
	base := "MSFT"
	for i := range base {
		changed := []byte(base)
		changed[i] = 'Z'
		assert.True(t, IsNearDuplicate(base, string(changed)), "one position changed at %d", i)
	}

	assert.False(t, IsNearDuplicate("MSFT", "ZZFT"))
}

func TestFindNearDuplicates(t *testing.T) {
	known := []string{"ABCE", "ZZZZ", "ABC", "ABCD", "BCD", "XBCD"}

	got := FindNearDuplicates("ABCD", known)

	assert.Equal(t, []string{"ABC", "ABCE", "BCD", "XBCD"}, got)
}

func TestFindNearDuplicates_NoMatches(t *testing.T) {
	assert.Empty(t, FindNearDuplicates("QQQQ", []string{"AAPL", "MSFT"}))
	assert.Empty(t, FindNearDuplicates("AAPL", nil))
}
