package media

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ilkoid/poncho-bot/pkg/config"
)

// Transcriber — контракт "аудиофайл → текст".
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperTranscriber — транскрипция через OpenAI Audio API.
type WhisperTranscriber struct {
	api   *openai.Client
	model string
}

// Проверка что WhisperTranscriber реализует Transcriber
var _ Transcriber = (*WhisperTranscriber)(nil)

// NewWhisperTranscriber создаёт транскрайбер на основе конфигурации модели.
//
// BaseURL поддерживается так же как в pkg/llm/openai — для
// совместимых не-OpenAI провайдеров.
func NewWhisperTranscriber(modelDef config.ModelDef) *WhisperTranscriber {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	model := modelDef.ModelName
	if model == "" {
		model = openai.Whisper1
	}

	return &WhisperTranscriber{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Transcribe отправляет аудиофайл в API и возвращает текст.
//
// Ошибки транспорта/API оборачиваются в ErrTranscription —
// вызывающий код отдаёт пользователю описательный текст, не падает.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := t.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	return resp.Text, nil
}
