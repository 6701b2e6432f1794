package llmchain

import (
	"fmt"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var placeholderRx = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_][A-Za-z0-9_.-]*)\s*\}\}`)

// TemplateError reports a placeholder that references a step which has not
// completed: an unknown id, a forward reference, or a self reference.
type TemplateError struct {
	Step        string
	Placeholder string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template for step %q references %q which has not completed", e.Step, e.Placeholder)
}

// renderTemplate substitutes every {{name}} placeholder in tmpl with the
// output of the already-completed step of that name. A placeholder that does
// not resolve is an error rather than passed through: leaking template syntax
// into a live prompt is worse than failing fast. A template without
// placeholders is returned unchanged.
func renderTemplate(step, tmpl string, completed *orderedmap.OrderedMap[string, string]) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	var rerr error
	rendered := placeholderRx.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if value, ok := completed.Get(name); ok {
			return value
		}
		if rerr == nil {
			rerr = &TemplateError{Step: step, Placeholder: name}
		}
		return match
	})
	if rerr != nil {
		return "", rerr
	}
	return rendered, nil
}
