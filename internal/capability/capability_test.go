package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AccumulatesMonotonically(t *testing.T) {
	t.Parallel()

	s := NewSet(Reads)
	require.True(t, s.Has(Reads))
	require.False(t, s.Has(PairedReads))

	s.Add(PairedReads, "trimmed_reads")
	assert.True(t, s.Has(PairedReads))
	assert.True(t, s.Has("trimmed_reads"))
	assert.True(t, s.HasAll([]Capability{Reads, PairedReads}))
	assert.False(t, s.HasAll([]Capability{Reads, Contigs}))
	assert.True(t, s.HasAny([]Capability{Contigs, Reads}))
	assert.False(t, s.HasAny([]Capability{Contigs, Reference}))
}

func TestSet_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := NewSet(Reads)
	c := s.Clone()
	c.Add(Contigs)

	assert.True(t, c.Has(Contigs))
	assert.False(t, s.Has(Contigs))
}

func TestSet_SortedIsStable(t *testing.T) {
	t.Parallel()

	s := NewSet("z", "a", "m")
	assert.Equal(t, []Capability{"a", "m", "z"}, s.Sorted())
	assert.Equal(t, s.Sorted(), s.Sorted())
}

func TestSatisfies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		have     Set
		requires []Capability
		excludes []Capability
		want     bool
	}{
		{
			name: "empty requirements always match",
			have: NewSet(),
			want: true,
		},
		{
			name:     "all requirements present",
			have:     NewSet(Reads, PairedReads),
			requires: []Capability{Reads, PairedReads},
			want:     true,
		},
		{
			name:     "missing requirement",
			have:     NewSet(Reads),
			requires: []Capability{Reads, PairedReads},
			want:     false,
		},
		{
			name:     "exclusion hit",
			have:     NewSet(Reads, Contigs),
			requires: []Capability{Reads},
			excludes: []Capability{Contigs},
			want:     false,
		},
		{
			name:     "exclusion miss",
			have:     NewSet(Reads),
			requires: []Capability{Reads},
			excludes: []Capability{Contigs},
			want:     true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.have.Satisfies(tc.requires, tc.excludes))
		})
	}
}
