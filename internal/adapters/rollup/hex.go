package rollup

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// The rollup server exchanges every payload as 0x-prefixed hex.

// Bin2Hex renders bytes as a 0x-prefixed hex string.
func Bin2Hex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// Str2Hex renders a UTF-8 string as a 0x-prefixed hex string.
func Str2Hex(s string) string {
	return Bin2Hex([]byte(s))
}

// Hex2Bin decodes a 0x-prefixed hex string.
func Hex2Bin(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode hex payload: %w", err)
	}
	return b, nil
}
