package usecase

import (
	"strings"

	"nexus/internal/domain"
)

const (
	DefaultModel = "gemini-3-flash-preview"

	// ProviderFallback replaces the reply whenever the provider cannot be used.
	ProviderFallback = "I apologize, but I'm having trouble connecting to my neural network. Please check your connection."
	// ReplyFallback is appended when the gateway produced no usable text.
	ReplyFallback = "Protocol error. Retrying..."

	DefaultGreeting = "Systems are nominal. How can I assist you with your deployments today?"

	temperature = 0.7
	topP        = 0.95
)

func systemInstruction() string {
	return strings.Join([]string{
		"You are 'Nexus AI', a sophisticated, helpful, and concise digital assistant for a high-end creative dashboard.",
		"Provide insights on productivity, design, and data.",
		"Keep responses elegant and brief.",
	}, " ")
}

func buildGenerationRequest(model, prompt string) domain.GenerationRequest {
	return domain.GenerationRequest{
		Model:             model,
		SystemInstruction: systemInstruction(),
		Prompt:            prompt,
		Temperature:       temperature,
		TopP:              topP,
	}
}
