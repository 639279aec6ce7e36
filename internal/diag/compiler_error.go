package diag

import (
	"fmt"

	"emojicode/internal/source"
)

// CompilerError is the typed failure raised during analysis. It unwinds
// through the analyser driver, which catches it per function and turns it
// into a bag entry, so one broken function does not suppress diagnostics
// for the rest of the package.
type CompilerError struct {
	Code    Code
	Primary source.Span
	Message string
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Primary, e.Message)
}

// Errorf builds a CompilerError with a formatted message.
func Errorf(code Code, primary source.Span, format string, args ...any) *CompilerError {
	return &CompilerError{
		Code:    code,
		Primary: primary,
		Message: fmt.Sprintf(format, args...),
	}
}

// ReportCompilerError funnels a caught CompilerError into a Reporter.
func ReportCompilerError(r Reporter, e *CompilerError) {
	if e == nil {
		return
	}
	Error(r, e.Code, e.Primary, e.Message)
}
