package render

import (
	"strings"
	"unicode"

	"github.com/muesli/termenv"
)

// PlainText word-wraps a post or comment body for display. Bodies are
// literal text: markup and entities are shown as typed. Control characters
// other than newlines are removed so a body cannot drive the terminal.
func PlainText(raw string, width int) string {
	if raw == "" {
		return ""
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, raw)
	return wrapText(strings.TrimSpace(clean), width)
}

// Mailto renders name as a terminal hyperlink to mailto:email.
// Terminals without OSC 8 support show the bare name.
func Mailto(name, email string) string {
	if email == "" {
		return name
	}
	return termenv.Hyperlink("mailto:"+email, name)
}

// wrapText performs simple word wrapping to the given width.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for i, word := range words {
			wlen := len([]rune(word))
			if i > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if i > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}
