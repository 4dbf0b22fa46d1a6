package alloy

import "regexp"

var (
	singleDataElementRe = regexp.MustCompile(`^%([^%\n]+)%$`)
	dataElementRe       = regexp.MustCompile(`%([^%\n]+)%`)
)

// IsDataElementToken reports whether v is exactly one data element reference
// such as "%page name%".
func IsDataElementToken(v any) bool {
	s, ok := v.(string)
	return ok && singleDataElementRe.MatchString(s)
}

// DataElementNames returns the data element names referenced in s, in order
// of appearance.
func DataElementNames(s string) []string {
	var out []string
	for _, m := range dataElementRe.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

// isEmptyValue treats nil and the empty string as "nothing entered".
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
