package chat

import "strings"

// Лимиты транспорта (Discord).
const (
	// DefaultHardLimit — жёсткий лимит одного сообщения.
	DefaultHardLimit = 2000

	// DefaultSoftLimit — целевой размер чанка при нарезке.
	DefaultSoftLimit = 1500

	// DefaultSingleLimit — порог, до которого ответ уходит одним сообщением.
	DefaultSingleLimit = 1900
)

// Split разбивает длинный текст на чанки для транспорта.
//
// Гарантии:
//   - разрезы только по границам строк;
//   - чанки идут в исходном порядке, конкатенация всех чанков
//     восстанавливает текст (с точностью до завершающего перевода
//     строки: каждый чанк нормализуется до "...\n");
//   - чанк не превышает hard, КРОМЕ случая одиночной строки длиннее
//     hard — такая строка отдаётся собственным чанком как есть
//     (pass-through: текст не теряем, транспорт сам откажет в отправке).
//
// Алгоритм: строки накапливаются в буфер; как только буфер превышает
// soft — он сбрасывается одним чанком. Если добавление строки
// превысило бы hard, буфер сбрасывается до добавления.
func Split(text string, soft, hard int) []string {
	if soft <= 0 {
		soft = DefaultSoftLimit
	}
	if hard <= 0 {
		hard = DefaultHardLimit
	}

	var chunks []string
	var buf strings.Builder

	for _, line := range strings.Split(text, "\n") {
		// Не даём буферу перевалить за жёсткий лимит
		if buf.Len() > 0 && buf.Len()+len(line)+1 > hard {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}

		buf.WriteString(line)
		buf.WriteString("\n")

		if buf.Len() > soft {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}

	return chunks
}
