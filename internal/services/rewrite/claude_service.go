package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/interfaces"
)

const rewriteSystemPrompt = `You rewrite e-commerce product copy. Given a product title, short
description and long description, return improved versions that are accurate,
specific and free of filler. Respond with a single JSON object with the keys
"title", "short_description" and "long_description". Omit a key to keep the
original text.`

// ClaudeService implements the RewriteService interface using the Anthropic
// API. Construct it only when the collaborator is configured; callers hold a
// nil interface otherwise.
type ClaudeService struct {
	config  *common.RewriteConfig
	client  anthropic.Client
	logger  arbor.ILogger
	timeout time.Duration
}

// NewClaudeService creates the rewrite collaborator from configuration
func NewClaudeService(config *common.RewriteConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("rewrite service requires an API key (set rewrite.api_key or AFFILINK_REWRITE_API_KEY)")
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	return &ClaudeService{
		config:  config,
		client:  client,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// Rewrite sends the scraped text to the model and parses the rewritten copy.
// One retry on failure; errors are returned for the caller to ignore.
func (s *ClaudeService) Rewrite(ctx context.Context, in *interfaces.RewriteInput) (*interfaces.RewriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rewrite input: %w", err)
	}

	maxTokens := s.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(payload))),
		},
		System: []anthropic.TextBlockParam{
			{Text: rewriteSystemPrompt},
		},
	}

	var resp *anthropic.Message
	var apiErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, apiErr = s.client.Messages.New(ctx, params)
		if apiErr == nil {
			break
		}
		if attempt == 0 {
			s.logger.Warn().Err(apiErr).Msg("Retrying rewrite API call")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if apiErr != nil {
		return nil, fmt.Errorf("rewrite API call failed: %w", apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from rewrite API")
	}

	result := &interfaces.RewriteResult{}
	raw := extractJSONObject(text.String())
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return nil, fmt.Errorf("failed to parse rewrite response: %w", err)
	}

	return result, nil
}

// extractJSONObject trims any prose the model wraps around the JSON body
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
