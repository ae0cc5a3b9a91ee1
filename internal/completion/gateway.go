package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/folio/portfolio/backend/go-services/pkg/metrics"
)

// Gateway validates chat requests, applies defaults and calls the provider
// under a deadline. It keeps no per-request state.
type Gateway struct {
	provider     Provider
	defaultModel string
	allowed      map[string]struct{}
}

func NewGateway(p Provider, defaultModel string, allowedModels []string) *Gateway {
	allowed := make(map[string]struct{}, len(allowedModels)+1)
	for _, m := range allowedModels {
		allowed[m] = struct{}{}
	}
	allowed[defaultModel] = struct{}{}
	return &Gateway{provider: p, defaultModel: defaultModel, allowed: allowed}
}

// DecodeRequest parses and validates a raw request body.
func DecodeRequest(body []byte) (*Request, *Error) {
	var generic interface{}
	if err := json.Unmarshal(body, &generic); err != nil {
		return nil, newError(CodeParse, "Invalid JSON in request body", err)
	}
	if err := Validate(generic); err != nil {
		return nil, Classify(err)
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, ValidationError(fmt.Sprintf("%s has an invalid type: expected %s", te.Field, te.Type))
		}
		return nil, ValidationError(err.Error())
	}
	return &req, nil
}

// ResolveModel returns m when it is allow-listed, the default model otherwise.
func (g *Gateway) ResolveModel(m string) string {
	if _, ok := g.allowed[m]; ok && m != "" {
		return m
	}
	return g.defaultModel
}

// Resolve applies the model allow-list and the sampling defaults.
func (g *Gateway) Resolve(req *Request) Params {
	p := Params{
		Messages:    req.Messages,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
		Timeout:     DefaultTimeoutMS * time.Millisecond,
	}
	model := ""
	if req.Model != nil {
		model = *req.Model
	}
	p.Model = g.ResolveModel(model)
	if req.Temperature != nil {
		p.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		p.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		p.TopP = *req.TopP
	}
	if req.Stream != nil {
		p.Stream = *req.Stream
	}
	if len(req.Stop) > 0 {
		p.Stop = req.Stop
	}
	if req.TimeoutMS != nil && *req.TimeoutMS > 0 {
		p.Timeout = time.Duration(*req.TimeoutMS) * time.Millisecond
	}
	return p
}

type outcome struct {
	res *Result
	err error
}

// Complete runs one completion. Failures are always returned as *Error.
func (g *Gateway) Complete(ctx context.Context, req *Request) (*Response, error) {
	p := g.Resolve(req)
	start := time.Now()
	resp, err := g.race(ctx, p)
	metrics.ChatCompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		ce := Classify(err)
		metrics.ChatCompletions.WithLabelValues(string(ce.Code)).Inc()
		logger.Warnf("chat completion failed: model=%s code=%s err=%v", p.Model, ce.Code, err)
		return nil, ce
	}
	metrics.ChatCompletions.WithLabelValues("OK").Inc()
	logger.Debugf("chat completion ok: model=%s tokens=%d in %v", resp.Model, resp.Usage.TotalTokens, time.Since(start))
	return resp, nil
}

// race calls the provider and a p.Timeout timer; whichever settles first wins.
// The provider's context is cancelled when the timer wins.
func (g *Gateway) race(ctx context.Context, p Params) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		res, err := g.provider.Complete(ctx, p)
		ch <- outcome{res: res, err: err}
	}()

	var o outcome
	select {
	case o = <-ch:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, newError(CodeTimeout, fmt.Sprintf("Request timed out after %dms", p.Timeout.Milliseconds()), ErrTimeout)
		}
		return nil, ctx.Err()
	}
	if o.err != nil {
		return nil, o.err
	}
	if o.res == nil || strings.TrimSpace(o.res.Text) == "" {
		return nil, ErrInvalidResponse
	}

	u := o.res.Usage
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	model := o.res.Model
	if model == "" {
		model = p.Model
	}
	return &Response{Message: o.res.Text, Model: model, Usage: &u}, nil
}
