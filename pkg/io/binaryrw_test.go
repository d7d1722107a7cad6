package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadLE(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteU64LE(0x1122334455667788)
	w.WriteU32LE(0xdeadbeef)
	w.WriteU16LE(0xcafe)
	w.WriteB(0x7f)
	w.WriteBool(true)
	require.NoError(t, w.Err)

	r := NewBinReaderFromBuf(w.Bytes())
	assert.EqualValues(t, 0x1122334455667788, r.ReadU64LE())
	assert.EqualValues(t, 0xdeadbeef, r.ReadU32LE())
	assert.EqualValues(t, 0xcafe, r.ReadU16LE())
	assert.EqualValues(t, 0x7f, r.ReadB())
	assert.True(t, r.ReadBool())
	require.NoError(t, r.Err)
}

func TestVarUint(t *testing.T) {
	values := []uint64{0, 1, 0xfc, 0xfd, 0xfffe, 0xffff, 0x10000, 0xfffffffe, 0xffffffff, 0x100000000}
	for _, v := range values {
		w := NewBufBinWriter()
		w.WriteVarUint(v)
		require.NoError(t, w.Err)
		r := NewBinReaderFromBuf(w.Bytes())
		require.Equal(t, v, r.ReadVarUint())
		require.NoError(t, r.Err)
	}
}

func TestVarBytes(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteVarBytes([]byte("some data"))
	w.WriteString("a string")
	require.NoError(t, w.Err)

	r := NewBinReaderFromBuf(w.Bytes())
	assert.Equal(t, []byte("some data"), r.ReadVarBytes())
	assert.Equal(t, "a string", r.ReadString())
	require.NoError(t, r.Err)
}

func TestVarBytesTooBig(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteVarBytes(make([]byte, 32))
	r := NewBinReaderFromBuf(w.Bytes())
	r.ReadVarBytes(16)
	require.Error(t, r.Err)
}

func TestReadErrorSticky(t *testing.T) {
	r := NewBinReaderFromBuf([]byte{0x01})
	_ = r.ReadU64LE()
	require.Error(t, r.Err)
	// Further reads keep the error and return zero values.
	assert.EqualValues(t, 0, r.ReadU32LE())
	assert.EqualValues(t, 0, r.ReadVarUint())
	require.Error(t, r.Err)
}

func TestBufBinWriterDrained(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteB(1)
	require.NotNil(t, w.Bytes())
	// A drained buffer fails further writes until Reset.
	w.WriteB(2)
	require.Error(t, w.Err)
	w.Reset()
	w.WriteB(3)
	require.NoError(t, w.Err)
}

type testSerializable struct {
	V uint32
}

func (s *testSerializable) DecodeBinary(r *BinReader) { s.V = r.ReadU32LE() }
func (s *testSerializable) EncodeBinary(w *BinWriter) { w.WriteU32LE(s.V) }

func TestReadWriteArray(t *testing.T) {
	arr := []*testSerializable{{V: 1}, {V: 2}, {V: 3}}
	w := NewBufBinWriter()
	w.WriteArray(arr)
	require.NoError(t, w.Err)

	var decoded []*testSerializable
	r := NewBinReaderFromBuf(w.Bytes())
	r.ReadArray(&decoded)
	require.NoError(t, r.Err)
	require.Equal(t, arr, decoded)
}

func TestReadArrayTooBig(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteVarUint(10)
	r := NewBinReaderFromBuf(w.Bytes())
	var decoded []*testSerializable
	r.ReadArray(&decoded, 5)
	require.Error(t, r.Err)
}
