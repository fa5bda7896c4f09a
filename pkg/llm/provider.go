// Интерфейс Провайдера через который работает всё приложение.

package llm

import "context"

// Provider — абстракция над LLM API.
//
// Реализации: pkg/llm/openai (OpenAI-совместимые API).
// Все ошибки транспорта/API возвращаются обёрнутыми — вызывающий код
// решает, что показать пользователю (Orchestrator подставляет fallback).
type Provider interface {
	// Generate принимает контекст и историю сообщений.
	// Возвращает ответ модели в унифицированном формате Message.
	// tools — опциональный список определений функций
	// (если провайдер поддерживает Function Calling).
	Generate(ctx context.Context, messages []Message, tools ...any) (Message, error)
}
