package llm

// pricing is USD per 1M tokens.
type pricing struct {
	input  float64
	output float64
}

var prices = map[string]pricing{
	"gemini-2.5-flash":      {input: 0.30, output: 2.50},
	"gemini-2.5-flash-lite": {input: 0.10, output: 0.40},
	"gemini-2.5-pro":        {input: 1.25, output: 10.00},
	"gemini-2.0-flash":      {input: 0.10, output: 0.40},
	"gpt-4o":                {input: 2.50, output: 10.00},
	"gpt-4o-mini":           {input: 0.15, output: 0.60},
}

// Usage is the token accounting for one model call.
type Usage struct {
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd"`
	Estimated    bool    `json:"estimated"`
}

// UsageFor returns the usage of resp for a request whose prompt text was
// prompt. Providers that do not report token counts are estimated.
func UsageFor(resp *CompletionResponse, prompt string) Usage {
	u := Usage{InputTokens: resp.InputTokens, OutputTokens: resp.OutputTokens}
	if u.InputTokens == 0 && u.OutputTokens == 0 {
		u.InputTokens = EstimateTokens(prompt)
		u.OutputTokens = EstimateTokens(resp.Text)
		u.Estimated = true
	}
	u.CostUSD = EstimateCost(resp.Model, u.InputTokens, u.OutputTokens)
	return u
}

// EstimateCost returns the cost in USD, or 0 for models without a price.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := prices[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1_000_000.0*p.input + float64(outputTokens)/1_000_000.0*p.output
}

// EstimateTokens approximates one token per four bytes of text.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
