package ensname

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	for input, expected := range map[string]string{
		"foo.eth":     "foo.eth",
		"Foo.ETH":     "foo.eth",
		"":            "",
		".eth":        ".eth",
		"xn--ls8h.la": "💩.la",
	} {
		out, err := Normalize(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, out, input)
	}
}

// Vectors from EIP-137.
func TestNameHash(t *testing.T) {
	for name, expected := range map[string]string{
		"":        "0000000000000000000000000000000000000000000000000000000000000000",
		"eth":     "93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae",
		"foo.eth": "de9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f",
	} {
		hash, err := NameHash(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, hex.EncodeToString(hash[:]), name)
	}
}

func TestNameHashNormalizes(t *testing.T) {
	lower, err := NameHash("foo.eth")
	require.NoError(t, err)
	upper, err := NameHash("Foo.ETH")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestLabelHash(t *testing.T) {
	hash, err := LabelHash("eth")
	require.NoError(t, err)
	assert.Equal(t, "4f5b812789fc606be1b3b16908db13fc7a9adf7ca72641f84d75b47069d3d7f0", hex.EncodeToString(hash[:]))

	// keccak256 of the empty string.
	hash, err = LabelHash("")
	require.NoError(t, err)
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(hash[:]))

	_, err = LabelHash("foo.eth")
	assert.Error(t, err, "labels must not contain periods")
}

func TestReverseName(t *testing.T) {
	addr := common.HexToAddress("0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	name := ReverseName(addr)
	assert.Equal(t, "d8da6bf26964af9d7eed9e03e53415d37aa96045.addr.reverse", name)
}

func TestDNSEncode(t *testing.T) {
	encoded, err := DNSEncode("foo.eth")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x03foo\x03eth\x00"), encoded)
}

func TestDNSEncodeReverseName(t *testing.T) {
	addr := common.HexToAddress("0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	encoded, err := DNSEncode(ReverseName(addr))
	require.NoError(t, err)

	// 40-char address label, then "addr", then "reverse", then the root.
	require.Len(t, encoded, 1+40+1+4+1+7+1)
	assert.Equal(t, byte(40), encoded[0])
	assert.Equal(t, "d8da6bf26964af9d7eed9e03e53415d37aa96045", string(encoded[1:41]))
	assert.Equal(t, byte(4), encoded[41])
	assert.Equal(t, "addr", string(encoded[42:46]))
	assert.Equal(t, byte(7), encoded[46])
	assert.Equal(t, "reverse", string(encoded[47:54]))
	assert.Equal(t, byte(0), encoded[54])
}
