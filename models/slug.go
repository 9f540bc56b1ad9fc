package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters NFD cannot split into base + mark.
var slugReplacer = strings.NewReplacer("ı", "i", "İ", "i", "ø", "o", "ß", "ss", "æ", "ae", "&", " and ")

// Slugify lowercases name, strips diacritics and joins words with dashes:
// "Çiçek Pastanesi & Kafe" becomes "cicek-pastanesi-and-kafe".
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, slugReplacer.Replace(name))
	if err != nil {
		folded = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Vendor{},
		&Courier{},
		&Customer{},
		&Listing{},
		&Appointment{},
		&VartoOrder{},
		&VartoOrderItem{},
		&VartoNotification{},
	}
}
