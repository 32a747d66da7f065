package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONScalars(t *testing.T) {
	for _, tc := range []struct {
		v    Value
		want string
	}{
		{Boolean(true), `true`},
		{Int64(-7), `-7`},
		{Double(2.5), `2.5`},
		{String("hi"), `"hi"`},
		{Raw([]byte{1, 2}), `"AQI="`},
		{Int64Array{1, 2, 3}, `[1,2,3]`},
		{StringArray{"a", "b"}, `["a","b"]`},
		{BooleanArray{true, false}, `[true,false]`},
	} {
		b, err := JSON(tc.v)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(b))
	}
}

func TestJSONStructOrder(t *testing.T) {
	var s Struct
	s.add("z", Int64(1))
	s.add("a", Int64(2))
	s.add("m", String("x"))

	b, err := JSON(s)
	require.NoError(t, err)
	// declared order, never sorted
	assert.Equal(t, `{"z":1,"a":2,"m":"x"}`, string(b))
}

func TestJSONStructArray(t *testing.T) {
	var a, b Struct
	a.add("v", Int64(1))
	b.add("v", Int64(2))

	out, err := JSON(StructArray{a, b})
	require.NoError(t, err)
	assert.Equal(t, `[{"v":1},{"v":2}]`, string(out))
}
