package kvo

import (
	"encoding/hex"
	"iter"
	"strings"
	"unicode/utf8"
)

// Dump formats entries one per line as "key = value". Keys that are
// printable text are shown quoted, everything else as hex.
func Dump(entries iter.Seq2[[]byte, []byte]) string {
	var buf strings.Builder
	for k, v := range entries {
		writeDumpBytes(&buf, k)
		buf.WriteString(" = ")
		writeDumpBytes(&buf, v)
		buf.WriteByte('\n')
	}
	return buf.String()
}

func (d Dict) Dump() string {
	return Dump(d.All())
}

func writeDumpBytes(buf *strings.Builder, data []byte) {
	if len(data) == 0 {
		buf.WriteString("<empty>")
	} else if isPrintable(data) {
		buf.WriteByte('"')
		buf.Write(data)
		buf.WriteByte('"')
	} else {
		buf.WriteString(hex.EncodeToString(data))
	}
}

func isPrintable(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for _, r := range string(data) {
		if r < 0x20 || r == 0x7F || r == '"' {
			return false
		}
	}
	return true
}
