// Package rlp implements RLP (Recursive Length Prefix) encoding and decoding
// for Ethereum transaction serialization.
// See: https://ethereum.org/en/developers/docs/data-structures-and-encoding/rlp/
package rlp

import (
	"bytes"
	"math/big"
)

// Item is a node in an RLP tree: either a byte string or an ordered list
// of items. The zero value is the empty byte string.
type Item struct {
	list  bool
	str   []byte
	elems []Item
}

// String creates a byte-string item.
func String(b []byte) Item {
	return Item{str: b}
}

// List creates a list item from the given elements.
func List(elems ...Item) Item {
	if elems == nil {
		elems = []Item{}
	}
	return Item{list: true, elems: elems}
}

// Uint64 creates a byte-string item holding the minimal big-endian
// representation of i. Zero encodes as the empty string.
func Uint64(i uint64) Item {
	return Item{str: bigEndianBytes(i)}
}

// BigInt creates a byte-string item holding the minimal big-endian
// representation of i. Zero and nil encode as the empty string.
// Negative values are not supported.
func BigInt(i *big.Int) Item {
	if i == nil || i.Sign() == 0 {
		return Item{}
	}
	return Item{str: i.Bytes()}
}

// IsList reports whether the item is a list.
func (it Item) IsList() bool {
	return it.list
}

// Str returns the byte-string payload. It is nil for lists.
func (it Item) Str() []byte {
	if it.list {
		return nil
	}
	return it.str
}

// Elems returns the list elements. It is nil for byte strings.
func (it Item) Elems() []Item {
	if !it.list {
		return nil
	}
	return it.elems
}

// Len returns the payload length in bytes for strings, or the element
// count for lists.
func (it Item) Len() int {
	if it.list {
		return len(it.elems)
	}
	return len(it.str)
}

// Equal reports whether two items represent the same tree.
func (it Item) Equal(other Item) bool {
	if it.list != other.list {
		return false
	}
	if !it.list {
		return bytes.Equal(it.str, other.str)
	}
	if len(it.elems) != len(other.elems) {
		return false
	}
	for i := range it.elems {
		if !it.elems[i].Equal(other.elems[i]) {
			return false
		}
	}
	return true
}

// Encode encodes an item to canonical RLP bytes.
// - A single byte in [0x00, 0x7f] is its own encoding.
// - A string of 0-55 bytes is prefixed with (0x80 + length).
// - A longer string is prefixed with (0xb7 + length of length) and the
//   big-endian length.
// - Lists use the same scheme starting at 0xc0/0xf7 over the concatenated
//   encodings of their elements.
func Encode(it Item) []byte {
	if !it.list {
		return encodeBytes(it.str)
	}

	// Encode all elements first to know total size
	encoded := make([][]byte, len(it.elems))
	totalLen := 0
	for i, el := range it.elems {
		encoded[i] = Encode(el)
		totalLen += len(encoded[i])
	}

	content := make([]byte, 0, totalLen)
	for _, e := range encoded {
		content = append(content, e...)
	}
	return concat(encodeLength(len(content), 0xc0), content)
}

// encodeBytes encodes a byte-string payload.
func encodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	return concat(encodeLength(len(b), 0x80), b)
}

// encodeLength encodes the length prefix for strings (offset=0x80) or lists (offset=0xc0).
func encodeLength(length int, offset byte) []byte {
	if length < 56 {
		return []byte{offset + byte(length)} //nolint:gosec // G115: length < 56, safe conversion
	}

	// For lengths >= 56, encode the length as big-endian bytes
	lenBytes := bigEndianBytes(uint64(length))
	return append([]byte{offset + 55 + byte(len(lenBytes))}, lenBytes...) //nolint:gosec // G115: len(lenBytes) <= 8 for any uint64
}

// bigEndianBytes converts a uint64 to minimal big-endian bytes (no leading zeros).
func bigEndianBytes(i uint64) []byte {
	if i == 0 {
		return nil
	}

	n := 0
	for v := i; v > 0; v >>= 8 {
		n++
	}

	result := make([]byte, n)
	for j := n - 1; j >= 0; j-- {
		result[j] = byte(i)
		i >>= 8
	}
	return result
}

// concat concatenates byte slices.
func concat(slices ...[]byte) []byte {
	totalLen := 0
	for _, s := range slices {
		totalLen += len(s)
	}

	result := make([]byte, 0, totalLen)
	for _, s := range slices {
		result = append(result, s...)
	}
	return result
}
