package engine

import (
	"fmt"
	"strings"

	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

// ChatRole collapses history roles onto the user/assistant pair most providers accept.
// Tool results are replayed as assistant text since the provider-side call ids are not kept.
func ChatRole(m turns.Message) turns.Role {
	switch m.Role {
	case turns.RoleUser:
		return turns.RoleUser
	case turns.RoleSystem:
		return turns.RoleSystem
	default:
		return turns.RoleAssistant
	}
}

// RenderContent is the text sent for m after ChatRole is applied.
func RenderContent(m turns.Message) string {
	if m.Role == turns.RoleTool {
		return fmt.Sprintf("[%s result] %s", m.Name, m.Content)
	}
	return m.Content
}

// Transcript flattens history into plain text, one message per line.
func Transcript(history []turns.Message) string {
	var b strings.Builder
	for _, m := range history {
		b.WriteString(string(m.Role))
		if m.Name != "" {
			b.WriteString("(" + m.Name + ")")
		}
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}
