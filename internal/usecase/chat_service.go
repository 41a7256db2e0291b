package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/observability"
)

// FallbackReply is sent when the generative backend cannot answer
const FallbackReply = "Sorry, I'm having trouble answering right now. Please try again in a moment, " +
	"or reach our team through the Support Chat Page."

// ChatService answers assistant messages within a customer's chat session
type ChatService struct {
	chats     domain.ChatRepository
	assembler *ContextAssembler
	generator domain.ChatGenerator
	log       zerolog.Logger
}

// NewChatService creates a chat service. A nil generator answers every message with FallbackReply.
func NewChatService(
	chats domain.ChatRepository,
	assembler *ContextAssembler,
	generator domain.ChatGenerator,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{
		chats:     chats,
		assembler: assembler,
		generator: generator,
		log:       observability.Component(log, "chat"),
	}
}

// Ask answers text in session sessionID of customerID and stores both sides of the exchange.
// A reply is produced even when grounding or generation fails.
func (s *ChatService) Ask(ctx context.Context, sessionID, customerID uint, text string) (*domain.ChatReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", domain.ErrInvalidRequest)
	}

	session, err := s.chats.GetSession(ctx, sessionID, customerID)
	if err != nil {
		return nil, err
	}
	history, err := s.chats.Messages(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	assembled := s.assembler.Build(ctx, history, text, customerID)

	userMsg := &domain.ChatMessage{SessionID: session.ID, Sender: domain.SenderUser, Content: text}
	if err := s.chats.AddMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	botMsg := &domain.ChatMessage{SessionID: session.ID, Sender: domain.SenderBot}
	gen, err := s.generate(ctx, assembled.Turns)
	if err != nil {
		s.log.Error().Err(err).Uint("session_id", session.ID).Msg("generation failed, sending fallback reply")
		botMsg.Content = FallbackReply
	} else {
		botMsg.Content = gen.Text
		botMsg.TokenUsage = gen.TokenCount
		botMsg.ModelUsed = gen.Model
	}
	if err := s.chats.AddMessage(ctx, botMsg); err != nil {
		return nil, err
	}

	return &domain.ChatReply{
		UserMessage: userMsg,
		BotMessage:  botMsg,
		Intent:      string(assembled.Intent),
		Grounded:    assembled.Grounding != GroundingNone,
	}, nil
}

func (s *ChatService) generate(ctx context.Context, turns domain.ConversationContext) (*domain.Generation, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: no generative backend configured", domain.ErrGenerationFailed)
	}
	gen, err := s.generator.Generate(ctx, turns)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(gen.Text) == "" {
		return nil, fmt.Errorf("%w: empty answer", domain.ErrGenerationFailed)
	}
	return gen, nil
}
