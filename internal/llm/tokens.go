package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// TokenCounter оценивает число токенов, когда вендор не вернул usage.
type TokenCounter interface {
	Count(model, text string) int
}

type tiktokenCounter struct {
	mu sync.Mutex
	// nil в карте означает, что токенизатор для модели недоступен.
	encodings map[string]*tiktoken.Tiktoken
	forModel  func(model string) (*tiktoken.Tiktoken, error)
	fallback  func() (*tiktoken.Tiktoken, error)
	logger    *zap.Logger
}

// NewTiktokenCounter создает счетчик на tiktoken.
// Для неизвестных моделей используется cl100k_base.
func NewTiktokenCounter(logger *zap.Logger) TokenCounter {
	return &tiktokenCounter{
		encodings: make(map[string]*tiktoken.Tiktoken),
		forModel:  tiktoken.EncodingForModel,
		fallback:  func() (*tiktoken.Tiktoken, error) { return tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE) },
		logger:    logger.Named("TokenCounter"),
	}
}

func (c *tiktokenCounter) Count(model, text string) int {
	enc := c.encoding(model)
	if enc == nil {
		return 0
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *tiktokenCounter) encoding(model string) *tiktoken.Tiktoken {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enc, ok := c.encodings[model]; ok {
		return enc
	}
	// BPE-файлы скачиваются по сети; неудача тоже кэшируется, чтобы не повторять загрузку.
	enc, err := c.forModel(model)
	if err != nil {
		enc, err = c.fallback()
		if err != nil {
			c.logger.Warn("Tokenizer unavailable, skipping token estimation", zap.String("model", model), zap.Error(err))
			enc = nil
		}
	}
	c.encodings[model] = enc
	return enc
}
