// Реестр для хранения и поиска инструментов.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ilkoid/poncho-bot/pkg/llm"
)

// Registry — потокобезопасное хранилище инструментов.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry создает новый пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// validateToolDefinition проверяет что ToolDefinition соответствует JSON Schema.
//
// Валидирует:
//   - Name не пустой
//   - Parameters является JSON объектом
//   - Parameters.type == "object"
//   - Parameters.required является массивом строк
func validateToolDefinition(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	if def.Parameters == nil {
		return fmt.Errorf("tool '%s': parameters cannot be nil", def.Name)
	}

	// Сериализуем Parameters в JSON для проверки структуры
	paramsJSON, err := json.Marshal(def.Parameters)
	if err != nil {
		return fmt.Errorf("tool '%s': failed to marshal parameters: %w", def.Name, err)
	}

	var params map[string]interface{}
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return fmt.Errorf("tool '%s': parameters must be a JSON object, got: %s", def.Name, string(paramsJSON))
	}

	// Проверяем что type == "object"
	typeVal, ok := params["type"]
	if !ok {
		return fmt.Errorf("tool '%s': parameters must have 'type' field", def.Name)
	}

	typeStr, ok := typeVal.(string)
	if !ok {
		return fmt.Errorf("tool '%s': parameters.type must be a string, got: %T", def.Name, typeVal)
	}

	if typeStr != "object" {
		return fmt.Errorf("tool '%s': parameters.type must be 'object', got: '%s'", def.Name, typeStr)
	}

	// Проверяем что 'required' (если есть) является массивом строк
	if requiredVal, exists := params["required"]; exists {
		required, ok := requiredVal.([]interface{})
		if !ok {
			return fmt.Errorf("tool '%s': parameters.required must be an array", def.Name)
		}

		for i, item := range required {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("tool '%s': parameters.required[%d] must be a string, got: %T", def.Name, i, item)
			}
		}
	}

	return nil
}

// Register добавляет инструмент в реестр с валидацией схемы.
//
// Возвращает ошибку если определение инструмента не валидно.
func (r *Registry) Register(tool Tool) error {
	def := tool.Definition()

	if err := validateToolDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[def.Name] = tool
	return nil
}

// Get ищет инструмент по имени.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownTool, name)
	}
	return tool, nil
}

// GetDefinitions возвращает список всех определений для отправки в LLM.
func (r *Registry) GetDefinitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Dispatch выполняет запрошенный моделью вызов инструмента.
//
// Возвращает готовое tool-сообщение с результатом и идентификатором
// вызова для корреляции. Ошибки:
//   - ErrUnknownTool — инструмент с таким именем не зарегистрирован
//   - прочие — ошибка выполнения самого инструмента
//
// Вызывающий код (Orchestrator) не должен давать этим ошибкам
// уронить цикл обработки — они конвертируются в текст для пользователя.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall) (llm.Message, error) {
	tool, err := r.Get(call.Name)
	if err != nil {
		return llm.Message{}, err
	}

	result, err := tool.Execute(ctx, call.Args)
	if err != nil {
		return llm.Message{}, fmt.Errorf("tool '%s' failed: %w", call.Name, err)
	}

	return llm.ToolMessage(call.ID, result), nil
}
