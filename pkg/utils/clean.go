// Package utils предоставляет вспомогательные функции для обработки данных.
//
// Включает утилиты для очистки ответов LLM от markdown-обёртки.
package utils

import (
	"strings"
)

// StripFences удаляет ```-обёртку вокруг всего ответа модели.
//
// Форматтер просит модель отвечать без code fence обёрток, но модели
// периодически игнорируют инструкцию и заворачивают весь ответ:
//
//	```markdown
//	# Ответ
//	```
//
// Функция снимает только внешнюю обёртку целого текста. Code blocks
// внутри ответа не трогаются — это легитимный markdown.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)

	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return s
	}

	// Одинокий ``` или текст вроде "```" — нечего снимать
	if len(trimmed) < 6 {
		return s
	}

	inner := strings.TrimSuffix(trimmed, "```")
	inner = strings.TrimPrefix(inner, "```")

	// Отрезаем language hint первой строки (```markdown, ```json и т.д.)
	if idx := strings.Index(inner, "\n"); idx != -1 {
		firstLine := strings.TrimSpace(inner[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, " \t") && len(firstLine) <= 16 {
			inner = inner[idx+1:]
		}
	}

	return strings.TrimSpace(inner)
}
