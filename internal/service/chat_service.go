package service

import (
	"context"

	"github.com/google/uuid"

	"ai-shopper-be/internal/dto"
	"ai-shopper-be/internal/pkg/logger"
	"ai-shopper-be/pkg/stylist"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	assistant       *stylist.Assistant
	recommendations IRecommendationService
	log             logger.ILogger
}

func NewChatService(assistant *stylist.Assistant, recommendations IRecommendationService, log logger.ILogger) IChatService {
	return &chatService{
		assistant:       assistant,
		recommendations: recommendations,
		log:             log,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = uuid.New().String()
	}

	// Pull the recommendation session into chat context so the assistant
	// knows what the shopper is looking at.
	var chatCtx *stylist.ChatContext
	if req.SessionId != "" {
		if state, found := s.recommendations.SessionContext(req.SessionId); found {
			liked, disliked := state.FeedbackLists()
			chatCtx = &stylist.ChatContext{
				ShoppingPrompt:  state.Profile.ShoppingPrompt,
				Gender:          state.Profile.Gender,
				PreferredStyles: state.Profile.PreferredStyles,
				PreferredColors: state.Profile.PreferredColors,
				LikedItems:      liked,
				DislikedItems:   disliked,
			}
		}
	}

	history := make([]stylist.ChatTurn, len(req.History))
	for i, msg := range req.History {
		history[i] = stylist.ChatTurn{Role: msg.Role, Content: msg.Content}
	}

	message, contextUpdated := s.assistant.Respond(ctx, req.Message, chatCtx, history)

	s.log.Info("chat", "Generated chat response", map[string]interface{}{
		"session_id":      sessionId,
		"context_updated": contextUpdated,
	})

	return &dto.ChatResponse{
		Message:        message,
		ContextUpdated: contextUpdated,
		Suggestions:    []string{},
		SessionId:      sessionId,
	}, nil
}
