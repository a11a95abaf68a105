package util

import "strings"

// Mask redacts a sensitive value, keeping the given number of leading and
// trailing characters and replacing everything in between
func Mask(value string, keepStart, keepEnd int) string {
	if keepStart+keepEnd >= len(value) {
		return value
	}

	masked := strings.Repeat("x", len(value)-keepStart-keepEnd)
	return value[:keepStart] + masked + value[len(value)-keepEnd:]
}

// RedactHook is applied to identifiers before logging. Set to nil to log
// identifiers unmasked.
var RedactHook = func(value string) string {
	return Mask(value, 3, 2)
}

// Redact masks an identifier using the registered RedactHook
func Redact(value string) string {
	if RedactHook == nil {
		return value
	}
	return RedactHook(value)
}
