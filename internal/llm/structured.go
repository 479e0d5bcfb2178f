package llm

import (
	"context"
	"time"

	"content-pipeline/internal/prompts"

	"go.uber.org/zap"
)

// structuredProvider - единственная реализация Provider.
// Отличия вендоров спрятаны в Completer.
type structuredProvider struct {
	name      string
	model     string
	completer Completer
	tokens    TokenCounter
	logger    *zap.Logger
}

func newStructuredProvider(name, model string, completer Completer, tokens TokenCounter, logger *zap.Logger) *structuredProvider {
	return &structuredProvider{
		name:      name,
		model:     model,
		completer: completer,
		tokens:    tokens,
		logger:    logger.Named("Provider").With(zap.String("provider", name), zap.String("model", model)),
	}
}

func (p *structuredProvider) Name() string  { return p.name }
func (p *structuredProvider) Model() string { return p.model }

func (p *structuredProvider) GenerateMasterContent(ctx context.Context, req MasterRequest) (*MasterContent, error) {
	system, user := prompts.Master.Render(prompts.MasterVars(req.Topic, req.SourceURL, req.SourceText, req.Comparison, req.Requirements))

	raw, err := p.complete(ctx, CompletionRequest{
		Stage:  StageMaster,
		System: system,
		User:   user + masterContract,
		Schema: masterSchema,
	})
	if err != nil {
		return nil, err
	}

	content, err := parseMaster(raw, normalizeBody)
	if err != nil {
		p.logger.Warn("Master response is not valid JSON", zap.Int("response_length", len(raw)), zap.Error(err))
		return nil, &GenerationError{Provider: p.name, Stage: StageMaster, Err: err}
	}
	return content, nil
}

func (p *structuredProvider) GenerateDerivativeContent(ctx context.Context, master MasterContent) (*DerivativeContent, error) {
	system, user := prompts.Derivative.Render(prompts.DerivativeVars(master.Title, master.Body))

	raw, err := p.complete(ctx, CompletionRequest{
		Stage:  StageDerivative,
		System: system,
		User:   user + derivativeContract,
		Schema: derivativeSchema,
	})
	if err != nil {
		return nil, err
	}

	content, err := parseDerivative(raw, normalizeBody)
	if err != nil {
		p.logger.Warn("Derivative response is not valid JSON", zap.Int("response_length", len(raw)), zap.Error(err))
		return nil, &GenerationError{Provider: p.name, Stage: StageDerivative, Err: err}
	}
	return content, nil
}

// complete вызывает транспорт и пишет метрики.
func (p *structuredProvider) complete(ctx context.Context, req CompletionRequest) (string, error) {
	stage := string(req.Stage)
	p.logger.Info("Sending request to LLM",
		zap.String("stage", stage),
		zap.Int("system_bytes", len(req.System)),
		zap.Int("user_bytes", len(req.User)),
	)

	start := time.Now()
	raw, usage, err := p.completer.CompleteJSON(ctx, req)
	duration := time.Since(start)

	if err != nil {
		aiRequestsTotal.WithLabelValues(p.name, p.model, stage, "error").Inc()
		p.logger.Error("LLM request failed", zap.String("stage", stage), zap.Duration("duration", duration), zap.Error(err))
		return "", &GenerationError{Provider: p.name, Stage: req.Stage, Err: err}
	}

	aiRequestsTotal.WithLabelValues(p.name, p.model, stage, "success").Inc()
	aiRequestDuration.WithLabelValues(p.name, p.model, stage).Observe(duration.Seconds())

	if usage.PromptTokens == 0 && p.tokens != nil {
		usage.PromptTokens = p.tokens.Count(p.model, req.System) + p.tokens.Count(p.model, req.User)
		usage.CompletionTokens = p.tokens.Count(p.model, raw)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	if usage.PromptTokens > 0 {
		aiPromptTokens.WithLabelValues(p.name, p.model, stage).Observe(float64(usage.PromptTokens))
		aiCompletionTokens.WithLabelValues(p.name, p.model, stage).Observe(float64(usage.CompletionTokens))
	}

	p.logger.Info("LLM response received",
		zap.String("stage", stage),
		zap.Duration("duration", duration),
		zap.Int("response_length", len(raw)),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
	)
	return raw, nil
}
