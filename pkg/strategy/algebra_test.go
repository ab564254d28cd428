package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(strategies ...[]string) *Set {
	s := NewSet()
	for _, labels := range strategies {
		s.Add(NewStrategy(labels...))
	}
	return s
}

func TestNewStrategy_SortsAndDedups(t *testing.T) {
	st := NewStrategy("c", "a", "b", "a")
	assert.Equal(t, Strategy{"a", "b", "c"}, st)
	assert.True(t, st.Contains("b"))
	assert.False(t, st.Contains("d"))
	assert.Equal(t, "{a, b, c}", st.String())
}

func TestStrategy_SubsetAndUnion(t *testing.T) {
	ab := NewStrategy("a", "b")
	abc := NewStrategy("a", "b", "c")
	bd := NewStrategy("b", "d")

	assert.True(t, ab.IsSubsetOf(abc))
	assert.True(t, ab.IsProperSubsetOf(abc))
	assert.False(t, abc.IsSubsetOf(ab))
	assert.False(t, bd.IsSubsetOf(abc))
	assert.True(t, Strategy{}.IsSubsetOf(ab))
	assert.False(t, ab.IsProperSubsetOf(NewStrategy("b", "a")))

	assert.Equal(t, NewStrategy("a", "b", "d"), ab.Union(bd))
	assert.Equal(t, ab, ab.Union(Strategy{}))
}

func TestSet_DeduplicatesByContent(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add(NewStrategy("a", "b")))
	assert.False(t, s.Add(NewStrategy("b", "a")))
	assert.True(t, s.Add(Strategy{}))
	assert.False(t, s.Add(Strategy{}))
	assert.Equal(t, 2, s.Len())
}

func TestSet_KeepsStrategiesWithSeparatorLikeLabels(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add(NewStrategy("a", "b")))
	assert.True(t, s.Add(NewStrategy("a\x1fb")))
	assert.True(t, s.Add(NewStrategy("1:a")))
	assert.True(t, s.Add(NewStrategy("a1:")))
	assert.Equal(t, 4, s.Len())
	assert.NotEqual(t, NewStrategy("ab").Key(), NewStrategy("a", "b").Key())
}

func TestSet_EqualIgnoresOrder(t *testing.T) {
	a := set([]string{"x"}, []string{"y", "z"})
	b := set([]string{"z", "y"}, []string{"x"})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(set([]string{"x"})))

	var nilSet *Set
	assert.True(t, nilSet.Equal(Empty()))
	assert.Equal(t, 0, nilSet.Len())
}

func TestSet_SortedAndString(t *testing.T) {
	s := set([]string{"b", "c"}, []string{"a"}, []string{}, []string{"a", "b"})
	sorted := s.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, Strategy{}, sorted[0])
	assert.Equal(t, NewStrategy("a"), sorted[1])
	assert.Equal(t, NewStrategy("a", "b"), sorted[2])
	assert.Equal(t, "{{}, {a}, {a, b}, {b, c}}", s.String())
}

func TestSet_StrategiesAreCopies(t *testing.T) {
	s := set([]string{"a"})
	got := s.Strategies()
	got[0][0] = "mutated"
	assert.True(t, s.Contains(NewStrategy("a")))
	assert.Equal(t, "a", s.Strategies()[0][0])
}

func TestCanonicalValues(t *testing.T) {
	assert.Equal(t, 0, Empty().Len())
	assert.True(t, Free().Contains(Strategy{}))
	assert.Equal(t, 1, Free().Len())
	assert.True(t, Single("b1").Contains(NewStrategy("b1")))
}

func TestUnion(t *testing.T) {
	a := set([]string{"a1"}, []string{"a2"})
	b := set([]string{"a2"}, []string{"a3"})

	got := Union(a, b)
	assert.True(t, got.Equal(set([]string{"a1"}, []string{"a2"}, []string{"a3"})))
	assert.True(t, Union(a, Empty()).Equal(a))
}

func TestProduct(t *testing.T) {
	a := set([]string{"a1"}, []string{"a2"})
	b := set([]string{"b1"}, []string{"a1"})

	got := Product(a, b)
	want := set(
		[]string{"a1", "b1"},
		[]string{"a1"},
		[]string{"a2", "b1"},
		[]string{"a1", "a2"},
	)
	assert.True(t, got.Equal(want), "got %s", got)

	assert.True(t, Product(a, Free()).Equal(a))
	assert.True(t, Product(a, Empty()).IsEmpty())
	assert.True(t, Product(Empty(), a).IsEmpty())
}

func TestFold_PreservesOrderAndIdentity(t *testing.T) {
	assert.True(t, Fold(Product, Free()).Equal(Free()))
	assert.True(t, Fold(Union, Empty()).IsEmpty())

	got := Fold(Product, Free(), Single("a"), Single("b"), set([]string{"c"}, []string{"d"}))
	assert.True(t, got.Equal(set([]string{"a", "b", "c"}, []string{"a", "b", "d"})))
}

func TestMinimal(t *testing.T) {
	tests := []struct {
		name string
		in   *Set
		want *Set
	}{
		{
			name: "empty",
			in:   Empty(),
			want: Empty(),
		},
		{
			name: "empty strategy dominates everything",
			in:   set([]string{"a"}, []string{}, []string{"b", "c"}),
			want: set([]string{}),
		},
		{
			name: "supersets removed",
			in:   set([]string{"a", "b"}, []string{"a"}, []string{"b", "c"}, []string{"a", "b", "c"}),
			want: set([]string{"a"}, []string{"b", "c"}),
		},
		{
			name: "incomparable kept",
			in:   set([]string{"a", "b"}, []string{"b", "c"}, []string{"a", "c"}),
			want: set([]string{"a", "b"}, []string{"b", "c"}, []string{"a", "c"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Minimal(tt.in)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestMinimal_PreservesInsertionOrder(t *testing.T) {
	in := set([]string{"x", "y"}, []string{"b"}, []string{"a"}, []string{"b", "z"})
	got := Minimal(in).Strategies()
	require.Len(t, got, 3)
	assert.Equal(t, NewStrategy("x", "y"), got[0])
	assert.Equal(t, NewStrategy("b"), got[1])
	assert.Equal(t, NewStrategy("a"), got[2])
}
