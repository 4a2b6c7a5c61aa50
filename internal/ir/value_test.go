package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGo_Scalars(t *testing.T) {
	cases := []struct {
		in   any
		want Value
	}{
		{nil, Null{}},
		{true, Bool(true)},
		{"hi", String("hi")},
		{int(7), Int(7)},
		{int64(-3), Int(-3)},
		{uint32(9), Int(9)},
		{float64(2.5), Float(2.5)},
	}
	for _, tc := range cases {
		got, err := FromGo(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestFromGo_Recursive(t *testing.T) {
	got, err := FromGo(map[string]any{
		"items": []any{int64(1), "two"},
		"flag":  false,
	})
	require.NoError(t, err)
	assert.Equal(t, Object{
		"items": Array{Int(1), String("two")},
		"flag":  Bool(false),
	}, got)
}

func TestFromGo_PassthroughValue(t *testing.T) {
	got, err := FromGo(Int(5))
	require.NoError(t, err)
	assert.Equal(t, Int(5), got)
}

func TestFromGo_UnsupportedType(t *testing.T) {
	type opaque struct{ n int }
	_, err := FromGo(opaque{n: 1})
	assert.ErrorContains(t, err, "unsupported literal type")

	_, err = FromGo([]any{make(chan int)})
	assert.Error(t, err)
}

func TestToGo_RoundTrip(t *testing.T) {
	v := Object{
		"n":     Int(7),
		"s":     String("x"),
		"items": Array{Float(1.5), Bool(true)},
	}
	got := ToGo(v)
	assert.Equal(t, map[string]any{
		"n":     int64(7),
		"s":     "x",
		"items": []any{1.5, true},
	}, got)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	obj := Object{"b": Int(1), "a": Int(2), "aa": Int(3)}
	assert.Equal(t, []string{"a", "aa", "b"}, obj.SortedKeys())
}
