package partsdoc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/millbrook/garage-vhc/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExtractedLine is one parts line read off a supplier invoice. Lines are
// drafts for review; nothing here writes to the parts store.
type ExtractedLine struct {
	Description string  `json:"description"`
	Quantity    string  `json:"quantity"`
	UnitPrice   string  `json:"unit_price"`
	LabourHours float64 `json:"labour_hours"`
}

// Extractor reads supplier parts invoices with the Vision API and returns
// draft parts lines.
type Extractor struct {
	client *openai.Client
	reader *Reader
	model  string
	logger *zap.Logger
}

// NewExtractor creates a new parts-invoice extractor
func NewExtractor(apiKey, visionModel string, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: openai.NewClient(apiKey),
		reader: NewReader(logger),
		model:  visionModel,
		logger: logger,
	}
}

// ExtractFromDocument renders the document and extracts draft parts lines.
// At most the first two pages are sent.
func (e *Extractor) ExtractFromDocument(ctx context.Context, docPath string) ([]*models.PartsLine, error) {
	e.logger.Info("Extracting parts lines from document", zap.String("path", docPath))

	images, err := e.reader.PageImages(docPath)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	maxPages := 2
	if len(images) < maxPages {
		maxPages = len(images)
	}

	extracted, err := e.extractWithVision(ctx, images[:maxPages])
	if err != nil {
		return nil, err
	}

	lines := make([]*models.PartsLine, 0, len(extracted))
	for _, raw := range extracted {
		line, err := e.toPartsLine(raw)
		if err != nil {
			e.logger.Warn("Skipping unparseable invoice line",
				zap.String("description", raw.Description),
				zap.Error(err))
			continue
		}
		lines = append(lines, line)
	}

	e.logger.Info("Parts lines extracted",
		zap.String("path", docPath),
		zap.Int("count", len(lines)))
	return lines, nil
}

func (e *Extractor) extractWithVision(ctx context.Context, images [][]byte) ([]ExtractedLine, error) {
	contentParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: extractionPrompt,
		},
	}
	for _, imgData := range images {
		contentParts = append(contentParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(imgData)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   4096,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You read motor-factor and parts supplier invoices. Extract every line item accurately. Always respond with valid JSON.",
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("Vision extraction failed", zap.Error(err))
		return nil, fmt.Errorf("failed to extract parts lines: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from vision model")
	}

	var result struct {
		Lines []ExtractedLine `json:"lines"`
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		e.logger.Error("Failed to parse extraction result",
			zap.String("content", content),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse extraction result: %w", err)
	}
	return result.Lines, nil
}

func (e *Extractor) toPartsLine(raw ExtractedLine) (*models.PartsLine, error) {
	quantity, err := decimal.NewFromString(strings.TrimSpace(raw.Quantity))
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", raw.Quantity, err)
	}
	unitPrice, err := decimal.NewFromString(strings.TrimSpace(strings.TrimLeft(raw.UnitPrice, "£$€")))
	if err != nil {
		return nil, fmt.Errorf("invalid unit price %q: %w", raw.UnitPrice, err)
	}

	return &models.PartsLine{
		Description: strings.TrimSpace(raw.Description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LabourHours: raw.LabourHours,
	}, nil
}

const extractionPrompt = `Extract every line item from this parts invoice.

Return JSON of this shape:
{
  "lines": [
    {
      "description": "item description as printed",
      "quantity": "numeric quantity, e.g. 2 or 0.5",
      "unit_price": "unit price excluding VAT, numeric, e.g. 15.00",
      "labour_hours": 0
    }
  ]
}

Rules:
- One entry per printed line item; do not merge or skip lines.
- quantity and unit_price must be plain numbers as strings, no currency symbols.
- labour_hours is 0 unless the invoice line is explicitly a labour charge.
- Ignore carriage, VAT summary and total rows.`
