package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeProvider struct {
	got   Params
	res   *Result
	err   error
	delay time.Duration
}

func (f *fakeProvider) Complete(ctx context.Context, p Params) (*Result, error) {
	f.got = p
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.res, f.err
}

func userRequest(text string) *Request {
	return &Request{Messages: []Message{{Role: "user", Content: text}}}
}

func TestResolveAppliesDefaults(t *testing.T) {
	g := NewGateway(&fakeProvider{}, DefaultOpenAIModel, OpenAIModels)
	p := g.Resolve(userRequest("hi"))
	assert.Equal(t, DefaultOpenAIModel, p.Model)
	assert.Equal(t, 0.7, p.Temperature)
	assert.Equal(t, 1024, p.MaxTokens)
	assert.Equal(t, 1.0, p.TopP)
	assert.False(t, p.Stream)
	assert.Nil(t, p.Stop)
	assert.Equal(t, 30*time.Second, p.Timeout)
}

func TestResolveKeepsExplicitValues(t *testing.T) {
	g := NewGateway(&fakeProvider{}, DefaultOpenAIModel, OpenAIModels)
	model := "llama-3.1-8b-instant"
	temp := 0.0
	maxTok := 50
	timeout := 1500
	p := g.Resolve(&Request{
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Model:       &model,
		Temperature: &temp,
		MaxTokens:   &maxTok,
		TimeoutMS:   &timeout,
		Stop:        StopSequences{"\n"},
	})
	assert.Equal(t, model, p.Model)
	assert.Equal(t, 0.0, p.Temperature)
	assert.Equal(t, 50, p.MaxTokens)
	assert.Equal(t, 1500*time.Millisecond, p.Timeout)
	assert.Equal(t, []string{"\n"}, p.Stop)
}

func TestResolveModelFallsBackForUnknownModel(t *testing.T) {
	g := NewGateway(&fakeProvider{}, DefaultOpenAIModel, OpenAIModels)
	assert.Equal(t, DefaultOpenAIModel, g.ResolveModel("gpt-9-ultra"))
	assert.Equal(t, DefaultOpenAIModel, g.ResolveModel(""))
	assert.Equal(t, "gemma2-9b-it", g.ResolveModel("gemma2-9b-it"))
}

func TestCompleteSumsUsage(t *testing.T) {
	fp := &fakeProvider{res: &Result{
		Text:  "Hello!",
		Usage: Usage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 99},
	}}
	g := NewGateway(fp, DefaultOpenAIModel, OpenAIModels)
	resp, err := g.Complete(context.Background(), userRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "Hello!", resp.Message)
	assert.Equal(t, DefaultOpenAIModel, resp.Model)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 17, resp.Usage.TotalTokens)
	assert.Equal(t, DefaultOpenAIModel, fp.got.Model)
}

// opencensus starts its stats worker from init; genai's transport pulls it in.
var ignoreStatsWorker = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")

func TestCompleteTimesOut(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreStatsWorker, goleak.IgnoreCurrent())

	fp := &fakeProvider{res: &Result{Text: "late"}, delay: 2 * time.Second}
	g := NewGateway(fp, DefaultOpenAIModel, OpenAIModels)
	timeout := 50
	req := userRequest("hi")
	req.TimeoutMS = &timeout

	start := time.Now()
	_, err := g.Complete(context.Background(), req)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CodeTimeout, ce.Code)
	assert.Equal(t, 504, ce.Status)
	assert.Equal(t, "Request timed out after 50ms", ce.Message)
}

func TestCompleteClassifiesProviderErrors(t *testing.T) {
	cases := []struct {
		err    error
		code   Code
		status int
	}{
		{ErrMissingAPIKey, CodeConfig, 500},
		{ErrRateLimited, CodeRateLimit, 429},
		{errors.New("upstream said: rate limit reached for model"), CodeRateLimit, 429},
		{errors.New("invalid api key provided"), CodeConfig, 500},
		{errors.New("connection timed out"), CodeTimeout, 504},
		{errors.New("boom"), CodeServer, 500},
	}
	for _, tc := range cases {
		g := NewGateway(&fakeProvider{err: tc.err}, DefaultOpenAIModel, OpenAIModels)
		_, err := g.Complete(context.Background(), userRequest("hi"))
		var ce *Error
		require.True(t, errors.As(err, &ce), tc.err.Error())
		assert.Equal(t, tc.code, ce.Code, tc.err.Error())
		assert.Equal(t, tc.status, ce.Status, tc.err.Error())
	}
}

func TestCompleteRejectsEmptyReply(t *testing.T) {
	g := NewGateway(&fakeProvider{res: &Result{Text: "  "}}, DefaultOpenAIModel, OpenAIModels)
	_, err := g.Complete(context.Background(), userRequest("hi"))
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CodeServer, ce.Code)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestClassifyDoesNotTreatGenerateAsRate(t *testing.T) {
	ce := Classify(errors.New("failed to generate content"))
	assert.Equal(t, CodeServer, ce.Code)
	assert.Equal(t, "Failed to get completion: failed to generate content", ce.Message)
}
