package domain

// Chat roles understood by the dialogue collaborators.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a multi-turn generation session.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
