package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"

	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// out writes formatted text to w, ignoring write errors.
func out(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// outln writes a line to w, ignoring write errors.
func outln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

// parseHexBytes decodes a hex string with or without a 0x prefix. An
// empty string decodes to nil.
func parseHexBytes(s, field string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrInvalidInput, map[string]string{
			"field":  field,
			"reason": "malformed hex",
		})
	}
	return b, nil
}

// parseBigInt parses a non-negative integer in decimal, or hex with a
// 0x prefix.
func parseBigInt(s, field string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok || n.Sign() < 0 {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrInvalidInput, map[string]string{
			"field":  field,
			"reason": "not a non-negative integer",
		})
	}
	return n, nil
}

// hexPrefixed renders bytes as 0x-prefixed lowercase hex.
func hexPrefixed(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
