package asm

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 BOM and applies NFC normalization at the source
// boundary, so identifiers that are visually identical but encoded with
// different combining-character sequences tokenize the same way. Adapted
// from internal/lexer/normalize.go, which does the identical thing for the
// full-language lexer.
func normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}
