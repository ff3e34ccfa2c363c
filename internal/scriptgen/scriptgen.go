// Package scriptgen writes cold call scripts for a lead.
package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"leadscout/internal/aiclient"
)

var (
	ErrNoBusiness = errors.New("business data is required")
	ErrNoScript   = errors.New("no script generated")
)

// Temperature is higher than the analyzer's for more natural variation.
const Temperature = 0.7

const systemPromptTemplate = `You are an expert cold call script writer for agencies that help local businesses improve their customer communication. Write scripts that are:
- Natural and conversational (not robotic)
- Focused on helping, not selling
- Addressing specific pain points found in reviews
- Structured with clear stages: opener, problem acknowledgment, value proposition, soft close

%s

Create a cold call script with these sections:
1. **Opening** - Friendly intro, state who you are
2. **Hook** - Reference their specific communication issue
3. **Value Prop** - How you can help (briefly)
4. **Qualifying Question** - Engage them in conversation
5. **Soft Close** - Suggest next step (meeting, demo, etc.)
6. **Handle Objections** - 2-3 common objections with responses

Keep it natural and conversational. Include placeholders like [YOUR NAME] and [YOUR COMPANY].`

// Business is what the generator needs to know about the callee.
type Business struct {
	Name        string  `json:"name" validate:"required"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	ProblemType *string `json:"problemType,omitempty"`
	Summary     *string `json:"summary,omitempty"`
}

// Completer is the part of the gateway client the generator needs.
type Completer interface {
	Complete(ctx context.Context, purpose string, messages []aiclient.Message, temperature float64) (string, error)
}

// Generator produces free-text scripts. Output is returned as-is.
type Generator struct {
	ai  Completer
	log logrus.FieldLogger
}

// New creates a Generator.
func New(ai Completer, log logrus.FieldLogger) *Generator {
	return &Generator{ai: ai, log: log}
}

// Generate asks the model for a script tailored to the business and the
// caller's services.
func (g *Generator) Generate(ctx context.Context, business *Business, userServices []string) (string, error) {
	if business == nil || strings.TrimSpace(business.Name) == "" {
		return "", ErrNoBusiness
	}

	messages := []aiclient.Message{
		{Role: "system", Content: SystemPrompt(userServices)},
		{Role: "user", Content: UserPrompt(business)},
	}
	script, err := g.ai.Complete(ctx, "cold_script", messages, Temperature)
	if errors.Is(err, aiclient.ErrEmptyResponse) {
		return "", ErrNoScript
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(script) == "" {
		return "", ErrNoScript
	}

	g.log.WithField("business", business.Name).Info("Cold call script generated")
	return script, nil
}

// ServicesLine describes what the caller sells.
func ServicesLine(userServices []string) string {
	if len(userServices) == 0 {
		return "The caller offers communication and marketing solutions."
	}
	return fmt.Sprintf("The caller offers these services: %s.", strings.Join(userServices, ", "))
}

// SystemPrompt returns the instruction prompt for the given services.
func SystemPrompt(userServices []string) string {
	return fmt.Sprintf(systemPromptTemplate, ServicesLine(userServices))
}

// UserPrompt describes the callee. Unknown fields are left out.
func UserPrompt(b *Business) string {
	var sb strings.Builder
	sb.WriteString("Generate a cold call script for calling:\n\n")
	fmt.Fprintf(&sb, "Business: %s\n", b.Name)
	writeOptional(&sb, "Phone", b.Phone)
	writeOptional(&sb, "Location", b.Address)
	writeOptional(&sb, "Communication Issue", b.ProblemType)
	writeOptional(&sb, "Details from reviews", b.Summary)
	sb.WriteString("\nCreate a personalized script that addresses their specific communication problems.")
	return sb.String()
}

func writeOptional(sb *strings.Builder, label string, value *string) {
	if value == nil || *value == "" {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, *value)
}
