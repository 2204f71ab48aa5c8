package template

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {{token}}; no nested braces.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// fieldIDPattern recognizes tokens that are raw field identifiers.
var fieldIDPattern = regexp.MustCompile(`^field_(\w+)$`)

// Render substitutes {{token}} placeholders. Per token the lookup order is:
// mapped values, direct submission data, then the field_<id> pattern against
// the submission keys. A token that resolves nowhere is left verbatim in the
// output so template authors can spot it in sent mail instead of silently
// losing content.
func Render(text string, data map[string]interface{}, mapped map[string]string) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(placeholder string) string {
		token := placeholderPattern.FindStringSubmatch(placeholder)[1]

		if mapped != nil {
			if v, ok := mapped[token]; ok {
				return v
			}
		}

		if v, ok := data[token]; ok && !strings.HasPrefix(token, "__") {
			return stringify(v)
		}

		if m := fieldIDPattern.FindStringSubmatch(token); m != nil {
			if v, ok := data["field_"+m[1]]; ok {
				return stringify(v)
			}
		}

		return placeholder
	})
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
