package untyped

import (
	"fmt"
	"strings"
)

// filterEq renders a single equality filter expression in the VergeOS
// "field eq value" form. Strings are quoted, numeric keys are not.
func filterEq(field string, value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%s eq '%s'", field, strings.ReplaceAll(v, "'", ""))
	default:
		return fmt.Sprintf("%s eq %v", field, v)
	}
}
