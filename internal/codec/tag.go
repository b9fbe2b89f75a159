package codec

import (
	"bytes"
	"unicode/utf8"
)

// TagWidth is the fixed on-chain width of a tag: one bytes32 slot.
const TagWidth = 32

// EncodeTag converts a tag string to its fixed-width on-chain form:
// UTF-8 bytes, null-padded to 32. Input longer than 32 bytes is
// truncated at the last complete rune that fits, so the stored bytes
// are always valid UTF-8 and decode to a prefix of the input.
func EncodeTag(s string) [TagWidth]byte {
	var out [TagWidth]byte
	b := []byte(s)
	if len(b) > TagWidth {
		n := TagWidth
		for n > 0 && !utf8.RuneStart(b[n]) {
			n--
		}
		b = b[:n]
	}
	copy(out[:], b)
	return out
}

// DecodeTag strips the null padding from an on-chain tag.
func DecodeTag(b [TagWidth]byte) string {
	return string(bytes.TrimRight(b[:], "\x00"))
}
