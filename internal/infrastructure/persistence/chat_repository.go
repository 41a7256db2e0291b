package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/auroramart/personalization/internal/domain"
)

// ChatRepository is the gorm-backed assistant chat store
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a chat repository
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetSession loads a session owned by customerID
func (r *ChatRepository) GetSession(ctx context.Context, sessionID, customerID uint) (*domain.ChatSession, error) {
	var m chatSessionModel
	err := r.db.WithContext(ctx).Where("id = ? AND customer_id = ?", sessionID, customerID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chat session %d: %w", sessionID, err)
	}
	return toChatSession(&m), nil
}

// ActiveSession returns the customer's active session, creating one if needed
func (r *ChatRepository) ActiveSession(ctx context.Context, customerID uint) (*domain.ChatSession, error) {
	m := chatSessionModel{CustomerID: customerID, IsActive: true}
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND is_active = ?", customerID, true).
		FirstOrCreate(&m).Error
	if err != nil {
		return nil, fmt.Errorf("get or create chat session: %w", err)
	}
	return toChatSession(&m), nil
}

// Messages returns a session's messages oldest first
func (r *ChatRepository) Messages(ctx context.Context, sessionID uint) ([]domain.ChatMessage, error) {
	var rows []chatMessageModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("ai_chat_messages.timestamp, ai_chat_messages.id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list chat messages of session %d: %w", sessionID, err)
	}
	msgs := make([]domain.ChatMessage, 0, len(rows))
	for i := range rows {
		msgs = append(msgs, toChatMessage(&rows[i]))
	}
	return msgs, nil
}

// AddMessage appends a message to a session and fills in its id and timestamp
func (r *ChatRepository) AddMessage(ctx context.Context, msg *domain.ChatMessage) error {
	m := &chatMessageModel{
		SessionID:  msg.SessionID,
		Sender:     msg.Sender,
		Content:    msg.Content,
		TokenUsage: msg.TokenUsage,
		ModelUsed:  msg.ModelUsed,
		Timestamp:  msg.Timestamp,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("add chat message: %w", err)
	}
	msg.ID, msg.Timestamp = m.ID, m.Timestamp
	return nil
}
