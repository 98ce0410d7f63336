package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const maxFallbackTraits = 3

// IntroWriter drafts a short introduction message.
type IntroWriter interface {
	WriteIntro(ctx context.Context, brief domain.IntroBrief) (*domain.Completion, error)
}

// IntroInput names who is introduced and to whom. Exactly one of TargetID
// and TargetDescription is expected; TargetID wins when both are set.
type IntroInput struct {
	SourceID          int64
	TargetID          int64
	TargetDescription string
}

// IntroOutput is a ready-to-paste introduction.
type IntroOutput struct {
	Message string
	Model   string
	// Fallback is true when the message came from the template, not the LLM.
	Fallback bool
}

// IntroService generates introduction messages between participants
type IntroService struct {
	participants ParticipantLister
	writer       IntroWriter
	logger       logrus.FieldLogger
}

// NewIntroService creates a new IntroService. A nil writer always yields the
// templated message.
func NewIntroService(participants ParticipantLister, writer IntroWriter, logger logrus.FieldLogger) *IntroService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &IntroService{
		participants: participants,
		writer:       writer,
		logger:       logger,
	}
}

func (s *IntroService) Generate(ctx context.Context, input IntroInput) (*IntroOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "IntroService.Generate", telemetry.SpanAttributes{
		ParticipantID: input.SourceID,
		Operation:     "intro",
	})
	defer span.End()

	description := strings.TrimSpace(input.TargetDescription)
	if input.TargetID <= 0 && description == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "either target participant or target description must be provided")
	}

	source, err := s.participants.GetByID(ctx, input.SourceID)
	if err != nil {
		return nil, err
	}

	brief := domain.IntroBrief{Source: source, TargetDescription: description}
	if input.TargetID > 0 {
		if input.TargetID == input.SourceID {
			return nil, domain.NewDomainError(domain.ErrCodeInvalidOperation, "cannot introduce a participant to themselves")
		}
		target, err := s.participants.GetByID(ctx, input.TargetID)
		if err != nil {
			return nil, err
		}
		brief.Target = target
		brief.TargetDescription = ""
		brief.SharedSkills = intersectStrings(uniqueStrings(source.AllSkills()), uniqueStrings(target.AllSkills()))
		brief.SharedInterests = intersectStrings(uniqueStrings(source.Interests), uniqueStrings(target.Interests))
	}

	if s.writer != nil {
		completion, err := s.writer.WriteIntro(ctx, brief)
		if err == nil && completion != nil && strings.TrimSpace(completion.Text) != "" {
			return &IntroOutput{
				Message: strings.TrimSpace(completion.Text),
				Model:   completion.Model,
			}, nil
		}
		if err == nil {
			err = fmt.Errorf("empty intro message")
		}
		llmErr := domain.NewDomainErrorWithCause(domain.ErrCodeLLMFailed, "intro generation failed", err)
		span.SetError(llmErr)
		s.logger.WithError(llmErr).WithField("participant_id", input.SourceID).Warn("intro: using fallback message")
	}

	return &IntroOutput{
		Message:  fallbackIntro(brief),
		Model:    "none",
		Fallback: true,
	}, nil
}

func fallbackIntro(brief domain.IntroBrief) string {
	if brief.Target == nil {
		return fmt.Sprintf("Hi! I'd like to introduce you to %s.", brief.Source.Name)
	}

	greeting := fmt.Sprintf("Hi %s, I'm %s.", firstName(brief.Target.Name), brief.Source.Name)

	traits := append(append([]string{}, brief.SharedSkills...), brief.SharedInterests...)
	if len(traits) == 0 {
		return greeting + " Would love to connect!"
	}
	if len(traits) > maxFallbackTraits {
		traits = traits[:maxFallbackTraits]
	}
	return fmt.Sprintf("%s We share %s, would love to connect!", greeting, strings.Join(traits, ", "))
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}
