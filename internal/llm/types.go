package llm

// Role is one of the two peer roles the model understands.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one earlier message in the conversation.
type Turn struct {
	Role Role
	Text string
}

// CompletionRequest contains the parameters for one model call.
type CompletionRequest struct {
	Model             string
	SystemInstruction string
	History           []Turn
	Message           string
	MaxTokens         int
	Temperature       float64
}

// CompletionResponse contains the model's reply.
type CompletionResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	FinishReason string
	Mock         bool
}

// HealthStatus is the configuration state of the model collaborator.
type HealthStatus string

const (
	HealthOK         HealthStatus = "ok"
	HealthMissingKey HealthStatus = "missing_key"
	HealthMock       HealthStatus = "mock"
)

// Health reports which collaborator is configured.
type Health struct {
	Provider string       `json:"provider"`
	Status   HealthStatus `json:"status"`
	Model    string       `json:"model"`
	Mock     bool         `json:"mock"`
}
