package render

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSheetName is the longest sheet name a workbook accepts.
const MaxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SheetName makes name acceptable as a worksheet name: forbidden characters
// become underscores, leading and trailing apostrophes are stripped and the
// result is cut to MaxSheetName runes.
func SheetName(name string) string {
	s := trimSheetName(sheetNameReplacer.Replace(name))
	if utf8.RuneCountInString(s) > MaxSheetName {
		s = trimSheetName(string([]rune(s)[:MaxSheetName]))
	}
	if s == "" {
		return "Sheet1"
	}
	return s
}

func trimSheetName(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r == '\'' || unicode.IsSpace(r) })
}
