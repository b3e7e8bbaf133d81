// File: internal/services/assistant/errors.go
package assistant

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeService    ErrorType = "SERVICE"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type AssistantError struct {
	Type    ErrorType
	Code    int
	Message string
	Cause   error
}

func (e *AssistantError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assistant %s error: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("assistant %s error: %s", e.Type, e.Message)
}

func (e *AssistantError) Unwrap() error {
	return e.Cause
}
