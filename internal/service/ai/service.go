// Package ai generates assistant replies through the configured chat
// model. It backs the /api/ai-chat endpoint and serves as the
// non-streaming responder when no gateway is configured.
package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zenwell/zenchat/backend/internal/config"
	"github.com/zenwell/zenchat/backend/internal/store"
)

// historyLimit bounds how many prior turns accompany each request.
const historyLimit = 10

// Service runs the prompt template and chat model as a compiled chain.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the chat chain against the configured model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, chain: runnable}, nil
}

// GenerateResponse produces one assistant reply for the user message,
// with the session's recent history and emotion context folded in.
func (s *Service) GenerateResponse(ctx context.Context, history []store.MessageRecord, recentEmotions []string, userMessage string) (string, error) {
	input := map[string]any{
		"system":  buildSystemPrompt(recentEmotions),
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("run chat chain: %w", err)
	}

	log.Printf("[ai] generated response, length=%d", len(response.Content))
	return response.Content, nil
}

// Respond adapts the service to the conversation responder contract:
// the whole reply arrives as one fragment.
func (s *Service) Respond(ctx context.Context, _ string, message string, emit func(fragment string)) error {
	reply, err := s.GenerateResponse(ctx, nil, nil, message)
	if err != nil {
		return err
	}
	emit(reply)
	return nil
}

func buildHistoryMessages(messages []store.MessageRecord) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case "user":
			history = append(history, schema.UserMessage(msg.Content))
		case "assistant":
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
