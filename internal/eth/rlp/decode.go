package rlp

import (
	"errors"
	"math"
)

// Decoding errors.
var (
	// ErrInputTooShort indicates a length prefix claims more payload than
	// the input provides.
	ErrInputTooShort = errors.New("rlp: input too short for declared length")

	// ErrCanonSize indicates a length that is not encoded in its minimal
	// form: a long-form length with leading zero bytes, a long-form length
	// below 56, or a single byte below 0x80 wrapped in a 0x81 prefix.
	ErrCanonSize = errors.New("rlp: non-canonical size information")

	// ErrTrailingBytes indicates extra bytes after the first complete item.
	ErrTrailingBytes = errors.New("rlp: input contains trailing bytes")

	// ErrValueTooLarge indicates a declared length exceeding what this
	// implementation can address.
	ErrValueTooLarge = errors.New("rlp: declared length exceeds limit")

	// ErrEmptyInput indicates an empty input buffer.
	ErrEmptyInput = errors.New("rlp: empty input")
)

// Decode decodes exactly one item from input. Trailing bytes after the
// first complete item are an error; use DecodeFirst to consume a stream
// of concatenated items.
//
// The decoder is strict about size prefixes (non-minimal lengths are
// rejected) but treats string payloads as opaque bytes. Whether a string
// is a minimal integer is the caller's concern.
func Decode(input []byte) (Item, error) {
	it, rest, err := DecodeFirst(input)
	if err != nil {
		return Item{}, err
	}
	if len(rest) != 0 {
		return Item{}, ErrTrailingBytes
	}
	return it, nil
}

// DecodeFirst decodes the first complete item from input and returns the
// unconsumed remainder.
func DecodeFirst(input []byte) (Item, []byte, error) {
	if len(input) == 0 {
		return Item{}, nil, ErrEmptyInput
	}

	prefix := input[0]

	switch {
	case prefix < 0x80:
		// Single byte, self-encoding
		return Item{str: input[:1]}, input[1:], nil

	case prefix <= 0xb7:
		// Short string, 0-55 bytes
		length := int(prefix - 0x80)
		if len(input) < 1+length {
			return Item{}, nil, ErrInputTooShort
		}
		payload := input[1 : 1+length]
		if length == 1 && payload[0] < 0x80 {
			// Should have been encoded as the byte itself
			return Item{}, nil, ErrCanonSize
		}
		return Item{str: payload}, input[1+length:], nil

	case prefix <= 0xbf:
		// Long string
		length, consumed, err := decodeLongLength(input, prefix-0xb7)
		if err != nil {
			return Item{}, nil, err
		}
		if len(input) < consumed+length {
			return Item{}, nil, ErrInputTooShort
		}
		return Item{str: input[consumed : consumed+length]}, input[consumed+length:], nil

	case prefix <= 0xf7:
		// Short list, payload 0-55 bytes
		length := int(prefix - 0xc0)
		if len(input) < 1+length {
			return Item{}, nil, ErrInputTooShort
		}
		elems, err := decodeListPayload(input[1 : 1+length])
		if err != nil {
			return Item{}, nil, err
		}
		return Item{list: true, elems: elems}, input[1+length:], nil

	default:
		// Long list
		length, consumed, err := decodeLongLength(input, prefix-0xf7)
		if err != nil {
			return Item{}, nil, err
		}
		if len(input) < consumed+length {
			return Item{}, nil, ErrInputTooShort
		}
		elems, err := decodeListPayload(input[consumed : consumed+length])
		if err != nil {
			return Item{}, nil, err
		}
		return Item{list: true, elems: elems}, input[consumed+length:], nil
	}
}

// decodeLongLength reads a big-endian length of lenOfLen bytes following
// the prefix byte. It returns the payload length and the total number of
// header bytes consumed (prefix + length bytes).
func decodeLongLength(input []byte, lenOfLen byte) (int, int, error) {
	n := int(lenOfLen)
	if len(input) < 1+n {
		return 0, 0, ErrInputTooShort
	}

	lenBytes := input[1 : 1+n]
	if lenBytes[0] == 0 {
		return 0, 0, ErrCanonSize
	}
	if n > 8 {
		return 0, 0, ErrValueTooLarge
	}

	var length uint64
	for _, b := range lenBytes {
		length = length<<8 | uint64(b)
	}
	if length < 56 {
		// Should have used the short form
		return 0, 0, ErrCanonSize
	}
	if length > math.MaxInt32 {
		return 0, 0, ErrValueTooLarge
	}

	return int(length), 1 + n, nil
}

// decodeListPayload decodes concatenated items until the payload is
// fully consumed.
func decodeListPayload(payload []byte) ([]Item, error) {
	elems := []Item{}
	for len(payload) > 0 {
		el, rest, err := DecodeFirst(payload)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		payload = rest
	}
	return elems, nil
}
