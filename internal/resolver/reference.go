package resolver

import (
	"strings"
	"unicode"
)

// RefKind tags how a rule author referred to a field.
type RefKind int

const (
	RefIdentifier RefKind = iota // opaque system-generated id, e.g. "field_17283"
	RefStableID                  // caller-chosen symbolic name
	RefLabel                     // human label as shown on the form
)

// FieldReference is a tagged field reference. Rules usually carry the bare
// string; classification is a hint for the scan step, not a restriction.
type FieldReference struct {
	Kind  RefKind
	Value string
}

// ClassifyReference guesses the kind of a bare reference string. Identifiers
// follow the "field_<id>" shape forms generate; anything containing spaces is
// a label; the rest is assumed to be a stable identifier.
func ClassifyReference(reference string) FieldReference {
	switch {
	case strings.HasPrefix(reference, "field_"):
		return FieldReference{Kind: RefIdentifier, Value: reference}
	case strings.ContainsAny(reference, " \t"):
		return FieldReference{Kind: RefLabel, Value: reference}
	default:
		return FieldReference{Kind: RefStableID, Value: reference}
	}
}

// camelCase normalizes a human label for comparison: "Partner One Email"
// becomes "partnerOneEmail".
func camelCase(s string) string {
	var words []string
	var cur strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

// commonAliases maps canonical contact fields to the key spellings form
// builders produce in the wild. Checked directly against the submission data.
var commonAliases = map[string][]string{
	"firstName": {"firstName", "first_name", "firstname", "fname", "givenName", "given_name"},
	"lastName":  {"lastName", "last_name", "lastname", "lname", "surname", "familyName", "family_name"},
	"email":     {"email", "emailAddress", "email_address", "e-mail", "mail"},
}
