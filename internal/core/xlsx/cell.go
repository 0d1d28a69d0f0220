package xlsx

import (
	"strconv"
	"strings"
)

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// ColumnName converts a zero-based column index to its spreadsheet letters
// using bijective base-26: 0 is A, 25 is Z, 26 is AA, 702 is AAA.
func ColumnName(col int) string {
	var buf [8]byte
	i := len(buf)
	col++
	for col > 0 {
		col--
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// EscapeText escapes the characters that are significant in element content.
// Quotes are left as is.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// appendRow appends one <row> element holding cells as inline strings.
func appendRow(dst []byte, rowNum int, cells []string) []byte {
	dst = append(dst, `    <row r="`...)
	dst = strconv.AppendInt(dst, int64(rowNum), 10)
	dst = append(dst, `">`...)
	for col, text := range cells {
		dst = append(dst, `<c r="`...)
		dst = append(dst, ColumnName(col)...)
		dst = strconv.AppendInt(dst, int64(rowNum), 10)
		dst = append(dst, `" t="inlineStr"><is><t>`...)
		dst = append(dst, EscapeText(text)...)
		dst = append(dst, `</t></is></c>`...)
	}
	dst = append(dst, "</row>\n"...)
	return dst
}
