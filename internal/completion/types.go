package completion

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
	DefaultTopP        = 1.0
	DefaultTimeoutMS   = 30000
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StopSequences accepts either a single string or a list of strings.
type StopSequences []string

func (s *StopSequences) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*s = StopSequences{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("stop must be a string or an array of strings")
	}
	*s = many
	return nil
}

// Request is the body of POST /api/chat. Optional fields are pointers so
// defaults can be told apart from explicit zero values.
type Request struct {
	Messages    []Message     `json:"messages"`
	Model       *string       `json:"model,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	Stream      *bool         `json:"stream,omitempty"`
	Stop        StopSequences `json:"stop,omitempty"`
	TimeoutMS   *int          `json:"timeout_ms,omitempty"`
}

// Params is a Request with the model resolved and every default applied.
type Params struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	TopP        float64
	Stream      bool
	Stop        []string
	Timeout     time.Duration
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Result is what a provider returns for one completion.
type Result struct {
	Text  string
	Model string
	Usage Usage
}

// Response is the 200 body of POST /api/chat.
type Response struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
	Usage   *Usage `json:"usage,omitempty"`
}

// ErrorBody is the error envelope of POST /api/chat.
type ErrorBody struct {
	Error   string      `json:"error"`
	Code    Code        `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Body renders e as the JSON error envelope.
func (e *Error) Body() ErrorBody {
	return ErrorBody{Error: e.Message, Code: e.Code, Details: e.Details}
}
