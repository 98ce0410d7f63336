package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloo-solutions/communityos/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	explainTemperature = 0.3
	explainMaxTokens   = 200
	introTemperature   = 0.7
	introMaxTokens     = 200
)

const explainSystemPrompt = `You explain search results for a community networking directory. Your task is to explain why specific participants match a user's search query.

Rules:
1. Only mention participants that are listed in the context.
2. Do not invent or assume participant information.
3. Base the explanation only on the data provided.
4. Be concise and natural, 2-3 sentences at most.
5. Reference participant names and the skills, interests or attributes that match the query.

Each participant has: name, skills, interests, bio, canHelp, needsHelp, hasStartup, startupName, lookingFor.`

const introSystemPrompt = `You write short, friendly introduction messages that connect people at tech community events.

Rules:
1. Only use the information provided about the participants. Do not invent facts.
2. Keep the message to 2-4 sentences.
3. Use a friendly, professional tone suitable for Telegram or LinkedIn.
4. Do not use emojis.
5. Make it clear why these people should connect.`

type explainParticipant struct {
	Name        string   `json:"name"`
	Skills      []string `json:"skills"`
	Interests   []string `json:"interests"`
	Bio         string   `json:"bio"`
	CanHelp     string   `json:"canHelp"`
	NeedsHelp   string   `json:"needsHelp"`
	HasStartup  bool     `json:"hasStartup"`
	StartupName *string  `json:"startupName"`
	LookingFor  []string `json:"lookingFor"`
}

func toExplainParticipant(p *domain.Profile) explainParticipant {
	ep := explainParticipant{
		Name:       p.Name,
		Skills:     p.AllSkills(),
		Interests:  nonNil(p.Interests),
		Bio:        p.Bio,
		CanHelp:    p.CanHelp,
		NeedsHelp:  p.NeedsHelp,
		HasStartup: p.HasStartup,
		LookingFor: nonNil(p.LookingFor),
	}
	if p.StartupName != "" {
		name := p.StartupName
		ep.StartupName = &name
	}
	return ep
}

// Explain asks the chat model why the given participants answer the query.
// Only the supplied participants are sent as context.
func (c *Client) Explain(ctx context.Context, query string, profiles []*domain.Profile) (*domain.Completion, error) {
	participants := make([]explainParticipant, len(profiles))
	for i, p := range profiles {
		participants[i] = toExplainParticipant(p)
	}
	payload, err := json.MarshalIndent(participants, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode participants: %w", err)
	}

	userPrompt := fmt.Sprintf("User query: %q\n\nParticipants found:\n%s\n\n"+
		"Write a concise explanation (2-3 sentences) of why these participants match the query.",
		query, payload)

	return c.complete(ctx, explainSystemPrompt, userPrompt, explainTemperature, explainMaxTokens)
}

// WriteIntro drafts an introduction of brief.Source to brief.Target, or to
// the audience in brief.TargetDescription when there is no target profile.
func (c *Client) WriteIntro(ctx context.Context, brief domain.IntroBrief) (*domain.Completion, error) {
	if brief.Source == nil {
		return nil, fmt.Errorf("intro source is required")
	}

	target := "Target audience: " + brief.TargetDescription
	if brief.Target != nil {
		target = describeForIntro(brief.Target)
	}

	var b strings.Builder
	b.WriteString("Write an introduction message connecting these people.\n\n")
	b.WriteString("Person being introduced:\n")
	b.WriteString(describeForIntro(brief.Source))
	b.WriteString("\n\nTarget person or audience:\n")
	b.WriteString(target)
	if len(brief.SharedSkills) > 0 {
		b.WriteString("\n\nShared skills: " + strings.Join(brief.SharedSkills, ", "))
	}
	if len(brief.SharedInterests) > 0 {
		b.WriteString("\nShared interests: " + strings.Join(brief.SharedInterests, ", "))
	}
	b.WriteString("\n\nReply with the message only, ready to paste into a chat.")

	return c.complete(ctx, introSystemPrompt, b.String(), introTemperature, introMaxTokens)
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (*domain.Completion, error) {
	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	model := resp.Model
	if model == "" {
		model = c.chatModel
	}
	return &domain.Completion{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func describeForIntro(p *domain.Profile) string {
	lines := []string{"Name: " + p.Name}
	if p.Bio != "" {
		lines = append(lines, "Bio: "+p.Bio)
	}
	if p.EnhancedBio != "" {
		lines = append(lines, "Enhanced bio: "+p.EnhancedBio)
	}
	if skills := p.AllSkills(); len(skills) > 0 {
		lines = append(lines, "Skills: "+strings.Join(skills, ", "))
	}
	if len(p.Interests) > 0 {
		lines = append(lines, "Interests: "+strings.Join(p.Interests, ", "))
	}
	if p.CanHelp != "" {
		lines = append(lines, "Can help with: "+p.CanHelp)
	}
	if p.NeedsHelp != "" {
		lines = append(lines, "Needs help with: "+p.NeedsHelp)
	}
	if len(p.LookingFor) > 0 {
		lines = append(lines, "Looking for: "+strings.Join(p.LookingFor, ", "))
	}
	if p.HasStartup {
		if p.StartupName != "" {
			lines = append(lines, "Startup: "+p.StartupName)
		}
		if p.StartupStage != "" {
			lines = append(lines, "Startup stage: "+p.StartupStage)
		}
		if p.StartupDescription != "" {
			lines = append(lines, "Startup description: "+p.StartupDescription)
		}
	}
	if p.AIUsage != "" {
		lines = append(lines, "AI usage: "+p.AIUsage)
	}
	return strings.Join(lines, "\n")
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
