package stylist

import (
	"context"
	"encoding/json"
	"strings"

	"ai-shopper-be/pkg/llm"
)

// ChatTurn is one prior exchange in the assistant conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatContext is the session state shared with the assistant so it can answer
// questions about what the shopper is currently seeing.
type ChatContext struct {
	ShoppingPrompt  string   `json:"shopping_prompt,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	PreferredStyles []string `json:"preferred_styles,omitempty"`
	PreferredColors []string `json:"preferred_colors,omitempty"`
	CurrentItems    []string `json:"current_items,omitempty"`
	LikedItems      []string `json:"liked_items,omitempty"`
	DislikedItems   []string `json:"disliked_items,omitempty"`
}

const assistantSystemPrompt = `You are Ray, a helpful fashion assistant. You help users find the perfect clothing items and provide style advice.

You have access to the user's current context including their shopping preferences, current recommendations, and session history.

Guidelines:
- Be friendly and conversational
- Provide specific fashion advice
- Ask clarifying questions when needed
- Help refine their search preferences
- Suggest outfit combinations
- Be concise but helpful

If the user wants to update their preferences, indicate this in your response.`

const assistantApology = "I'm sorry, I'm having trouble responding right now. Please try again."

// preference words that hint the shopper is changing what they want
var contextKeywords = []string{"prefer", "like", "want", "looking for", "change", "update"}

// Assistant is the conversational layer over the recommendation session.
type Assistant struct {
	llm       llm.ChatCompleter
	maxTokens int
}

func NewAssistant(completer llm.ChatCompleter) *Assistant {
	return &Assistant{llm: completer, maxTokens: 300}
}

// Respond answers a chat message with session context and up to the last five
// turns of history. The bool reports whether the message looks like a
// preference update. Model failures degrade to a canned apology.
func (a *Assistant) Respond(ctx context.Context, message string, chatCtx *ChatContext, history []ChatTurn) (string, bool) {
	messages := []llm.Message{{Role: "system", Content: assistantSystemPrompt}}

	if chatCtx != nil {
		if ctxJSON, err := json.MarshalIndent(chatCtx, "", "  "); err == nil {
			messages = append(messages, llm.Message{Role: "system", Content: "User Context: " + string(ctxJSON)})
		}
	}

	start := 0
	if len(history) > 5 {
		start = len(history) - 5
	}
	for _, turn := range history[start:] {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	messages = append(messages, llm.Message{Role: "user", Content: message})

	contextUpdated := detectPreferenceUpdate(message)

	response, err := a.llm.Chat(ctx, messages,
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(a.maxTokens),
	)
	if err != nil {
		return assistantApology, false
	}
	return strings.TrimSpace(response), contextUpdated
}

func detectPreferenceUpdate(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range contextKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
