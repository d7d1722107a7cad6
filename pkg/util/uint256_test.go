package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint256DecodeString(t *testing.T) {
	hexStr := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	val, err := Uint256DecodeStringLE(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.StringLE())

	valBE, err := Uint256DecodeStringLE("0x" + hexStr)
	require.NoError(t, err)
	assert.Equal(t, val, valBE)

	_, err = Uint256DecodeStringLE(hexStr[1:])
	require.Error(t, err)
	_, err = Uint256DecodeStringLE(hexStr[:len(hexStr)-2] + "zz")
	require.Error(t, err)
}

func TestUint256DecodeBytes(t *testing.T) {
	hexStr := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	val, err := Uint256DecodeStringLE(hexStr)
	require.NoError(t, err)

	fromLE, err := Uint256DecodeBytesLE(val.BytesLE())
	require.NoError(t, err)
	assert.Equal(t, val, fromLE)

	fromBE, err := Uint256DecodeBytesBE(val.BytesBE())
	require.NoError(t, err)
	assert.Equal(t, val, fromBE)

	_, err = Uint256DecodeBytesBE(val.BytesBE()[:10])
	require.Error(t, err)
}

func TestUint256Equals(t *testing.T) {
	a := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	b := "e287c5b29a1b66092be6803c59c765308ac20287e1b4977fd399da5fc8f66ab5"

	ua, err := Uint256DecodeStringLE(a)
	require.NoError(t, err)
	ub, err := Uint256DecodeStringLE(b)
	require.NoError(t, err)
	assert.False(t, ua.Equals(ub), "%s and %s cannot be equal", ua, ub)
	assert.True(t, ua.Equals(ua), "%s and %s must be equal", ua, ua)
	assert.Zero(t, ua.CompareTo(ua))
}

func TestUint256MarshalJSON(t *testing.T) {
	str := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	expected, err := Uint256DecodeStringLE(str)
	require.NoError(t, err)

	data, err := expected.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"0x`+str+`"`, string(data))

	var actual Uint256
	require.NoError(t, actual.UnmarshalJSON(data))
	assert.Equal(t, expected, actual)
}
