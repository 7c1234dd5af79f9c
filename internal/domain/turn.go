package domain

import "strings"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ValidRole reports whether r is one of the recognized conversation roles.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one conversational exchange entry. A turn is never mutated after
// creation; its content is non-empty after trimming.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewTurn builds a turn from raw input. It returns false when the role is not
// recognized or the content is empty after trimming.
func NewTurn(role Role, content string) (Turn, bool) {
	trimmed := strings.TrimSpace(content)
	if !ValidRole(role) || trimmed == "" {
		return Turn{}, false
	}
	return Turn{Role: role, Content: trimmed}, true
}
