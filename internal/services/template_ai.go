package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// TemplateAIService drafts rejection-email templates with OpenAI. Optional:
// it is only constructed when an API key is configured.
type TemplateAIService struct {
	client *openai.Client
}

func NewTemplateAIService(apiKey string) *TemplateAIService {
	return &TemplateAIService{
		client: openai.NewClient(apiKey),
	}
}

// DraftRejectionTemplate asks the model for a subject and body in the given
// language and tone, keeping the personalization placeholders intact.
func (s *TemplateAIService) DraftRejectionTemplate(ctx context.Context, language, tone string) (Template, error) {
	if s.client == nil {
		return Template{}, fmt.Errorf("OpenAI client not initialized")
	}

	if language == "" {
		language = "DE"
	}
	if tone == "" {
		tone = "freundlich und professionell"
	}

	prompt := fmt.Sprintf(`Du bist ein HR-Assistent. Entwirf eine Absage-E-Mail für Bewerber.

Sprache: %s
Ton: %s

Verwende die Platzhalter {anrede} und {name} für die persönliche Anrede. Der Absender ist das "OSO HR Team".

Antworte ausschließlich mit JSON in dieser Form:
{
  "subject": "Betreffzeile",
  "body": "Text der E-Mail mit den Platzhaltern"
}`, language, tone)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return Template{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Template{}, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var tmpl Template
	if err := json.Unmarshal([]byte(content), &tmpl); err != nil {
		return Template{}, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tmpl, nil
}
