package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/millbrook/garage-vhc/internal/vhc"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Advisor drafts the customer-facing wording for a VHC report: a short,
// plain-English summary of the red and amber work for the service advisor
// to review before sending. It never sees or changes approval state.
type Advisor struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewAdvisor creates a new advisor. An empty API key returns a disabled
// advisor; callers check Enabled before use.
func NewAdvisor(apiKey, model string, temperature float32, logger *zap.Logger) *Advisor {
	a := &Advisor{
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
	if apiKey != "" {
		a.client = openai.NewClient(apiKey)
	}
	return a
}

// Enabled reports whether an API key was configured.
func (a *Advisor) Enabled() bool {
	return a.client != nil
}

// CustomerSummary drafts wording for the red and amber findings.
func (a *Advisor) CustomerSummary(ctx context.Context, job *models.Job, report *vhc.Report) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("advisor is not configured")
	}

	prompt := buildPrompt(job, report)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a service advisor at a UK vehicle workshop. Write clear, honest, non-alarmist summaries of vehicle health check findings for customers. Plain English, no jargon, no pressure-selling.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		a.logger.Error("Failed to draft customer summary",
			zap.String("job_id", job.ID),
			zap.Error(err))
		return "", fmt.Errorf("failed to draft customer summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary from model")
	}

	a.logger.Info("Customer summary drafted", zap.String("job_id", job.ID))
	return summary, nil
}

func buildPrompt(job *models.Job, report *vhc.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vehicle %s. Draft a short customer summary of this health check.\n\n", job.VehicleReg)

	writeItems := func(title string, findings []models.Finding) {
		if len(findings) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, f := range findings {
			fmt.Fprintf(&b, "- %s (%s)", f.Label, f.SectionName)
			if f.Measurement != "" {
				fmt.Fprintf(&b, ", measured: %s", f.Measurement)
			}
			if f.Notes != "" {
				fmt.Fprintf(&b, ", notes: %s", f.Notes)
			}
			fmt.Fprintf(&b, ", estimated cost %s\n", f.Total.StringFixed(2))
		}
		b.WriteString("\n")
	}

	writeItems("Urgent items (red)", report.Groups.Red)
	writeItems("Advisory items (amber)", report.Groups.Amber)

	fmt.Fprintf(&b, "Red work total: %s. Amber work total: %s.\n",
		report.Totals.RedWork.StringFixed(2), report.Totals.AmberWork.StringFixed(2))
	b.WriteString("Keep it under 150 words. Urgent items first, then advisories.")
	return b.String()
}
