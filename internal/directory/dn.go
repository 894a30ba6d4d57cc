package directory

import "strings"

// EscapeRDNValue escapes an attribute value for safe use inside an RDN,
// per RFC 4514: the characters , + " \ < > ; are always escaped, a leading
// '#' or leading/trailing space is escaped, and NUL is escaped as \00.
// Mappers use this when building a DN from user-supplied values so that a
// value like "Doe, Jane" cannot be mistaken for an RDN separator.
func EscapeRDNValue(value string) string {
	if value == "" {
		return value
	}

	var b strings.Builder
	b.Grow(len(value) + 8)

	for i, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '#':
			if i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case ' ':
			if i == 0 || i == len(value)-1 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case 0:
			b.WriteString("\\00")
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// BuildDN joins an RDN attribute/value pair with a base DN, escaping the
// value first so it cannot smuggle in extra RDN or DN components.
func BuildDN(rdnAttr, rdnValue, baseDN string) string {
	return rdnAttr + "=" + EscapeRDNValue(rdnValue) + "," + baseDN
}
