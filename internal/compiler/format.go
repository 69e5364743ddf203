package compiler

import (
	"fmt"

	"github.com/grove-lang/grove/internal/diagnostics"
)

// Format renders a diagnostic as file:line:col: kind: message. Internal
// errors without a position get no location prefix.
func Format(diag diagnostics.Diag) string {
	if !diag.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", diag.Kind, diag.Message)
	}
	return fmt.Sprintf("%s: %s: %s", diag.Pos, diag.Kind, diag.Message)
}
