package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// GoogleProvider implements Provider using the Gemini API through the genai
// SDK. The SDK client is created on first use and reused afterwards.
type GoogleProvider struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// NewGoogleProvider creates a new Google Gemini provider.
func NewGoogleProvider(apiKey string, model string) *GoogleProvider {
	return &GoogleProvider{
		apiKey: apiKey,
		model:  model,
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or enable MOCK_LLM=1", ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *GoogleProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if err := checkGeminiResponse(resp); err != nil {
		return nil, err
	}

	out := &CompletionResponse{
		Text:  resp.Text(),
		Model: model,
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// checkGeminiResponse rejects replies that were blocked or carry no text.
func checkGeminiResponse(resp *genai.GenerateContentResponse) error {
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, fb.BlockReason)
	}
	if len(resp.Candidates) > 0 {
		switch r := resp.Candidates[0].FinishReason; r {
		case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
			genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
			return fmt.Errorf("%w: reply blocked (%s)", ErrEmptyResponse, r)
		}
	}
	if strings.TrimSpace(resp.Text()) == "" {
		return fmt.Errorf("%w: no text in reply", ErrEmptyResponse)
	}
	return nil
}
