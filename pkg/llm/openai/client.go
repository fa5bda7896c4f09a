// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Поддерживает Function Calling (tools) для интеграции с реестром
// инструментов. Работает только через интерфейс llm.Provider.
package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ilkoid/poncho-bot/pkg/config"
	"github.com/ilkoid/poncho-bot/pkg/llm"
	"github.com/ilkoid/poncho-bot/pkg/tools"
	"github.com/ilkoid/poncho-bot/pkg/utils"
)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
//
// Поддерживает:
//   - Базовую генерацию текста
//   - Function Calling (tools) с tool-сообщениями в истории
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// Проверка что Client реализует llm.Provider
var _ llm.Provider = (*Client)(nil)

// NewClient создаёт OpenAI клиент на основе конфигурации модели.
//
// Принимает ModelDef напрямую — все настройки из конфигурации,
// никакого хардкода. Поддержка custom BaseURL для non-OpenAI
// провайдеров (DeepSeek, Zai и т.д.).
func NewClient(modelDef config.ModelDef) *Client {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   modelDef.ModelName,
		timeout: modelDef.Timeout.Std(),
	}
}

// Generate выполняет запрос к API и возвращает ответ модели.
//
// Опционально принимает definitions инструментов для Function Calling:
// toolsArgs[0] должен быть []tools.ToolDefinition.
//
// Алгоритм:
//  1. Конвертирует внутренние сообщения в формат OpenAI SDK
//  2. Если переданы tools — добавляет их в запрос
//  3. Вызывает API (с timeout из конфигурации, если задан)
//  4. Конвертирует ответ обратно в наш формат
//  5. Извлекает ToolCalls если модель решила вызвать функции
//
// Все ошибки возвращаются, никаких panic.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, toolsArgs ...any) (llm.Message, error) {
	startTime := time.Now()

	// Timeout из конфигурации модели — защита от бесконечного зависания.
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// 1. Конвертируем наши сообщения в формат OpenAI SDK
	openaiMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		openaiMsgs[i] = mapToOpenAI(m)
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: openaiMsgs,
	}

	// 2. Добавляем tools если переданы
	// Ожидаем toolsArgs[0] = []tools.ToolDefinition
	if len(toolsArgs) > 0 {
		toolDefs, ok := toolsArgs[0].([]tools.ToolDefinition)
		if !ok {
			return llm.Message{}, fmt.Errorf("invalid tools type: expected []tools.ToolDefinition, got %T", toolsArgs[0])
		}

		req.Tools = convertToolsToOpenAI(toolDefs)

		// Автоматический режим — LLM сама решает когда вызывать tools
		req.ToolChoice = "auto"
	}

	// 3. Вызываем API
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", c.model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, fmt.Errorf("openai api error: %w", err)
	}

	// Проверяем что есть хотя бы один выбор
	if len(resp.Choices) == 0 {
		return llm.Message{}, fmt.Errorf("no choices in response")
	}

	// 4. Маппим ответ обратно в наш формат
	choice := resp.Choices[0].Message

	result := llm.Message{
		Role:    choice.Role,
		Content: choice.Content,
	}

	// 5. Извлекаем ToolCalls если модель решила вызвать функции
	if len(choice.ToolCalls) > 0 {
		result.ToolCalls = make([]llm.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			result.ToolCalls[i] = llm.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: tc.Function.Arguments,
			}
		}
	}

	utils.Info("LLM response received",
		"model", c.model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

// mapToOpenAI конвертирует наше внутреннее сообщение в формат SDK.
//
// Tool-сообщения несут ToolCallID, assistant-сообщения могут нести
// ToolCalls — оба направления нужны для второго круга Function Calling.
func mapToOpenAI(m llm.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:       m.Role,
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}

	if len(m.ToolCalls) > 0 {
		msg.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			msg.ToolCalls[i] = openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Args,
				},
			}
		}
	}

	return msg
}

// convertToolsToOpenAI конвертирует определения инструментов во внутреннем
// формате в формат OpenAI Function Calling.
//
// Поскольку ToolDefinition.Parameters уже является JSON Schema объектом
// (map[string]any), он напрямую передаётся в OpenAI SDK.
func convertToolsToOpenAI(defs []tools.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(defs))

	for i, def := range defs {
		result[i] = openai.Tool{
			Type: "function",
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}

	return result
}
