package models

import (
	"strings"
	"unicode"
)

// NormalizePhone keeps digits and a leading plus, so "0555 111-22 33" and
// "05551112233" name the same customer.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (i == 0 && r == '+') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
