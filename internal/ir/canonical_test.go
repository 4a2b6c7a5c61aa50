package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_KeyOrderingUTF16(t *testing.T) {
	// RFC 8785 orders keys by UTF-16 code units. The emoji (surrogate pair,
	// first unit 0xD83D) sorts before U+FF21 FULLWIDTH LATIN A (0xFF21),
	// which UTF-8 byte ordering would reverse.
	obj := Object{
		"Ａ":     Int(1),
		"\U0001F600": Int(2),
	}
	data, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"Ａ\":1}", string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(String("<a>&</a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a>&</a>"`, string(data))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// e + combining acute normalizes to the precomposed form.
	decomposed := String("e\u0301")
	precomposed := String("\u00e9")

	left, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	right, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(right), string(left))
	assert.Equal(t, "\"\u00e9\"", string(left))
}

func TestMarshalCanonical_LineSeparatorsUnescaped(t *testing.T) {
	// Go's encoder escapes U+2028/U+2029; RFC 8785 wants them literal.
	data, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(data))
}

func TestMarshalCanonical_NullForbidden(t *testing.T) {
	_, err := MarshalCanonical(Null{})
	assert.Error(t, err)

	_, err = MarshalCanonical(Object{"k": Null{}})
	assert.Error(t, err)
}

func TestMarshalCanonical_Ints(t *testing.T) {
	data, err := MarshalCanonical(Int(-42))
	require.NoError(t, err)
	assert.Equal(t, "-42", string(data))
}

func TestMarshalCanonical_FloatsShortestRoundTrip(t *testing.T) {
	cases := map[float64]string{
		1.5:   "1.5",
		0.1:   "0.1",
		1e21:  "1e+21",
		-2.25: "-2.25",
		3:     "3",
	}
	for f, want := range cases {
		data, err := MarshalCanonical(Float(f))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestMarshalCanonical_NonFiniteFloatsRejected(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := MarshalCanonical(Float(f))
		assert.Error(t, err)
	}
}

func TestMarshalCanonical_NestedStructure(t *testing.T) {
	obj := Object{
		"b": Array{Int(1), String("x"), Bool(true)},
		"a": Object{"inner": Float(2.5)},
	}
	data, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"inner":2.5},"b":[1,"x",true]}`, string(data))
}

func TestMarshalCanonical_GoNativeInputs(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"n": int64(7), "s": "hi"})
	require.NoError(t, err)
	assert.Equal(t, `{"n":7,"s":"hi"}`, string(data))
}
