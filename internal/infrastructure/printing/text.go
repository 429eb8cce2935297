package printing

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// toWinAnsi converts UTF-8 text to the Windows-1252 bytes the PDF core
// fonts expect. Runes outside the code page become '?'.
func toWinAnsi(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteByte(byte(r))
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
