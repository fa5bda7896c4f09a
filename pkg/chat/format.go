// Package chat реализует ядро бота: форматирование запроса,
// оркестрацию диалога с моделью (включая tool calls) и разбиение
// длинных ответов на сообщения для транспорта.
package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ilkoid/poncho-bot/pkg/llm"
)

// ErrNoMention — в тексте нет ровно одного префикса упоминания бота.
//
// Контрактная ошибка: вызывающий код обязан проверить упоминание
// до вызова форматтера, поэтому на практике она не возникает.
var ErrNoMention = errors.New("mention prefix not found")

// formatInstructions — фиксированный хвост, который добавляется к каждому
// запросу пользователя: markdown без ```-обёрток, без мета-комментариев
// про ИИ, предварительная нарезка длинных ответов по ~1200 символов.
const formatInstructions = ". Format your response to be in markdown without any '```' wrappers. " +
	"Do not provide anything but the markdown response itself. " +
	"In addition, I am aware that you are an AI, so you do not need to mention that. " +
	"Do not give warnings or notes about how the data may not be up to date or that you are an AI. " +
	"If your response is longer than 1900 characters, " +
	"please separate each ~1200 character blocks with a newline character"

// FormatUserQuery превращает сырой текст упоминания в user-сообщение.
//
// prefixes — варианты адресации бота (например, "<@id> " и "<@!id> ").
// Текст должен содержать ровно одно вхождение одного из префиксов;
// всё после него — запрос пользователя. Иначе — ErrNoMention.
func FormatUserQuery(content string, prefixes []string) (llm.Message, error) {
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		if strings.Count(content, prefix) != 1 {
			continue
		}

		_, query, _ := strings.Cut(content, prefix)
		return llm.UserMessage(query + formatInstructions), nil
	}

	return llm.Message{}, fmt.Errorf("%w in %q", ErrNoMention, content)
}
