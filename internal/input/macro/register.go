package macro

import "unicode"

// registerNames lists the macro registers in display order.
const registerNames = "abcdefghijklmnopqrstuvwxyz0123456789"

// IsValidRegister reports whether r names a macro register: a-z or 0-9.
func IsValidRegister(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// IsAppendRegister reports whether r is A-Z. Recording to an upper-case
// register appends to the lower-case one.
func IsAppendRegister(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// NormalizeRegister lower-cases A-Z and returns 0 for invalid names.
func NormalizeRegister(r rune) rune {
	switch {
	case IsAppendRegister(r):
		return unicode.ToLower(r)
	case IsValidRegister(r):
		return r
	}
	return 0
}

// AllRegisters returns a-z followed by 0-9.
func AllRegisters() []rune {
	return []rune(registerNames)
}
