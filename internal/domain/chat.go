package domain

import "time"

// Role is the role tag of a conversation turn as understood by the generative backend
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Stored sender values of chat messages
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatSession is a customer's assistant conversation
type ChatSession struct {
	ID         uint      `json:"id"`
	CustomerID uint      `json:"customerId"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ChatMessage is one persisted message of a chat session
type ChatMessage struct {
	ID         uint      `json:"id"`
	SessionID  uint      `json:"sessionId"`
	Sender     string    `json:"sender"`
	Content    string    `json:"content"`
	TokenUsage int       `json:"tokenUsage"`
	ModelUsed  string    `json:"modelUsed,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ConversationTurn is a single role-tagged turn sent to the generative backend
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ConversationContext is the ordered prompt: one instruction turn, the history, and the live query
type ConversationContext []ConversationTurn

// Last returns the final turn, or nil for an empty context
func (c ConversationContext) Last() *ConversationTurn {
	if len(c) == 0 {
		return nil
	}
	return &c[len(c)-1]
}

// Generation is the answer produced by the generative backend
type Generation struct {
	Text       string `json:"text"`
	TokenCount int    `json:"tokenCount"`
	Model      string `json:"model"`
}

// ChatReply is returned to callers of the chat service
type ChatReply struct {
	UserMessage *ChatMessage `json:"userMessage"`
	BotMessage  *ChatMessage `json:"botMessage"`
	Intent      string       `json:"intent"`
	Grounded    bool         `json:"grounded"`
}
