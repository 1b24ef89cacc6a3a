package ir

import (
	"strings"

	"github.com/hqllang/hql/herrors"
)

// jsReserved is the set of words that cannot be used as a JS identifier,
// consulted so a sanitised HQL name never collides with the language itself.
var jsReserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "new": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
	"let": true, "static": true, "await": true, "async": true, "null": true,
	"true": true, "false": true, "undefined": true,
}

// Sanitizer rewrites HQL symbol names into valid, collision-free JS
// identifiers for one compilation unit: every non-identifier character is
// replaced with "_", runs of "_" are collapsed, a leading digit or reserved
// word gets a "_" prefix, and a second HQL name that sanitises to the same
// JS text is a CodeGenError rather than a silent overwrite.
type Sanitizer struct {
	used map[string]string // sanitised JS name -> originating HQL name
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{used: make(map[string]string)}
}

func (s *Sanitizer) Sanitize(hqlName string, sp herrors.Span) (string, error) {
	js := sanitizeText(hqlName)
	if owner, ok := s.used[js]; ok && owner != hqlName {
		return "", herrors.New(herrors.KindCodeGen, sp, "",
			"identifiers %q and %q both sanitise to %q; rename one to avoid a collision", owner, hqlName, js)
	}
	s.used[js] = hqlName
	return js, nil
}

func sanitizeText(name string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if isJSIdentChar(r) {
			if r == '_' && lastUnderscore {
				continue
			}
			sb.WriteRune(r)
			lastUnderscore = r == '_'
			continue
		}
		if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := sb.String()
	if out == "" {
		out = "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if jsReserved[out] {
		out = "_" + out
	}
	return out
}

func isJSIdentChar(r rune) bool {
	return r == '_' || r == '$' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
