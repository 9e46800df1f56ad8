package types

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringUnmarshal(t *testing.T) {
	var form struct {
		Age    FlexString `json:"age"`
		Name   FlexString `json:"name"`
		Rent   FlexString `json:"rent"`
		Absent FlexString `json:"absent"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"age": 29, "name": " Jane ", "rent": null}`), &form))

	assert.Equal(t, 29, form.Age.IntOrZero())
	assert.Equal(t, "Jane", form.Name.String())
	assert.True(t, form.Rent.IsEmpty())
	assert.True(t, form.Absent.IsEmpty())
}

func TestFlexStringParsingFallsBackToZero(t *testing.T) {
	cases := []struct {
		in       FlexString
		wantInt  int
		wantReal float64
	}{
		{"29", 29, 29},
		{" 42 ", 42, 42},
		{"1500.50", 0, 1500.5},
		{"12.0", 12, 12},
		{"abc", 0, 0},
		{"", 0, 0},
		{"true", 0, 0},
		{"NaN", 0, 0},
		{"Inf", 0, 0},
		{"-Infinity", 0, 0},
		{"1e300", 0, 1e300},
		{"-5", -5, -5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.wantInt, tc.in.IntOrZero(), "int of %q", tc.in)
		assert.Equal(t, tc.wantReal, tc.in.FloatOrZero(), "float of %q", tc.in)
	}
}

func TestFlexUint64(t *testing.T) {
	var v struct {
		A FlexUint64 `json:"a"`
		B FlexUint64 `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": "7"}`), &v))
	assert.Equal(t, uint64(3), v.A.Uint64())
	assert.Equal(t, uint64(7), v.B.Uint64())

	var bad FlexUint64
	assert.Error(t, json.Unmarshal([]byte(`"seven"`), &bad))
}
