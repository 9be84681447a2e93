package greeting

import "strings"

// formatCodes are the characters that may follow '&' in a template.
const formatCodes = "0123456789abcdefklmnorx"

// SectionSign introduces a display formatting code in rendered chat text.
const SectionSign = '§'

// Colorize translates '&' + code pairs into display formatting codes.
// Ampersands not followed by a known code are kept as-is.
func Colorize(msg string) string {
	if msg == "" {
		return ""
	}

	runes := []rune(msg)
	var b strings.Builder
	b.Grow(len(msg))
	for i := 0; i < len(runes); i++ {
		if runes[i] == '&' && i+1 < len(runes) {
			code := toLower(runes[i+1])
			if strings.ContainsRune(formatCodes, code) {
				b.WriteRune(SectionSign)
				b.WriteRune(code)
				i++
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// StripFormatting removes rendered formatting codes, for plain-text sinks.
func StripFormatting(msg string) string {
	runes := []rune(msg)
	var b strings.Builder
	b.Grow(len(msg))
	for i := 0; i < len(runes); i++ {
		if runes[i] == SectionSign && i+1 < len(runes) {
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
