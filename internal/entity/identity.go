package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.Und)

// IdentityKey identifies the subject of a form. Values are normalized once
// at construction; comparisons never touch the stored fields.
type IdentityKey struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Zip   string `json:"zip,omitempty"` // empty when unknown
}

// NewIdentityKey trims and title-cases the names and reduces zip to its
// five-digit prefix.
func NewIdentityKey(first, last, zip string) IdentityKey {
	return IdentityKey{
		First: NormalizeName(first),
		Last:  NormalizeName(last),
		Zip:   NormalizeZip(zip),
	}
}

// NormalizeName trims whitespace and title-cases a name component.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return titler.String(s)
}

// NormalizeZip trims the value and truncates ZIP+4 forms to the first five digits.
// Anything that does not start with five digits is returned trimmed as-is.
func NormalizeZip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return s
	}
	for i := 0; i < 5; i++ {
		if s[i] < '0' || s[i] > '9' {
			return s
		}
	}
	rest := strings.TrimPrefix(s[5:], "-")
	if rest == "" || (len(rest) == 4 && isDigits(rest)) {
		return s[:5]
	}
	return s
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// HasZip reports whether a postal code is present.
func (k IdentityKey) HasZip() bool { return k.Zip != "" }

// Coarse drops the postal code.
func (k IdentityKey) Coarse() IdentityKey {
	return IdentityKey{First: k.First, Last: k.Last}
}

// WithZip returns a copy carrying the given (normalized) postal code.
func (k IdentityKey) WithZip(zip string) IdentityKey {
	return IdentityKey{First: k.First, Last: k.Last, Zip: NormalizeZip(zip)}
}

// CoarseEqual compares first and last name only.
func (k IdentityKey) CoarseEqual(o IdentityKey) bool {
	return k.First == o.First && k.Last == o.Last
}

// FineEqual compares first, last and postal code.
func (k IdentityKey) FineEqual(o IdentityKey) bool {
	return k.CoarseEqual(o) && k.Zip == o.Zip
}

func (k IdentityKey) String() string {
	if k.Zip == "" {
		return k.First + " " + k.Last
	}
	return k.First + " " + k.Last + " " + k.Zip
}
