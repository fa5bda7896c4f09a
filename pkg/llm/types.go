// Базовые типы - определяем универсальный язык общения с моделями
package llm

// Message — одно сообщение диалога.
//
// Immutable после добавления в историю: все изменения делаются через
// создание нового Message, никогда через мутацию сохранённого.
type Message struct {
	Role    string // "system", "user", "assistant", "tool"
	Content string // Текст сообщения (может быть пустым при tool call)

	// ToolCalls — запросы модели на вызов инструментов.
	// Заполнено только для Role == "assistant".
	ToolCalls []ToolCall

	// ToolCallID — идентификатор вызова, на который отвечает это сообщение.
	// Заполнено только для Role == "tool".
	ToolCallID string
}

// ToolCall — запрос модели на вызов инструмента.
type ToolCall struct {
	ID   string // Идентификатор для корреляции с результатом
	Name string // Имя инструмента из реестра
	Args string // Сырой JSON с аргументами
}

// Константы ролей для удобства
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// UserMessage создаёт user-сообщение с текстом.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ToolMessage создаёт tool-сообщение с результатом вызова инструмента.
//
// callID — идентификатор ToolCall, на который отвечает результат.
func ToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// HasToolCalls сообщает, решила ли модель вызвать инструменты.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
