package compiler

import (
	"fmt"
	"strings"
)

// Replacement is one `${TOKEN}` substitution. Stage drivers keep their
// replacements in a single ordered table so the substitution order is
// explicit and auditable.
type Replacement struct {
	Token string
	Value string
}

// expandScript applies the replacements in order with literal string
// replacement, then rejects any script still carrying a placeholder.
func expandScript(template string, reps []Replacement) (string, error) {
	script := template
	for _, r := range reps {
		script = strings.ReplaceAll(script, r.Token, r.Value)
	}
	if i := strings.Index(script, "${"); i >= 0 {
		end := strings.Index(script[i:], "}")
		token := script[i:]
		if end >= 0 {
			token = script[i : i+end+1]
		}
		return "", fmt.Errorf("unresolved placeholder %s", token)
	}
	return script, nil
}
