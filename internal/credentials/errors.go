package credentials

import "strings"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned as a value, never panicked; callers stop
// processing when it is non-empty.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Messages returns the field messages in reporting order.
func (v ValidationErrors) Messages() []string {
	out := make([]string, 0, len(v))
	for _, fe := range v {
		out = append(out, fe.Message)
	}
	return out
}
