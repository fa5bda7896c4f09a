package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLines строит текст из n строк по width символов.
func buildLines(n, width int) string {
	line := strings.Repeat("a", width)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func TestSplit_Reconstruction(t *testing.T) {
	text := buildLines(40, 100) // 40 строк по 100 символов ≈ 4КБ

	chunks := Split(text, DefaultSoftLimit, DefaultHardLimit)
	require.Greater(t, len(chunks), 1, "oversized text must produce multiple chunks")

	// Конкатенация чанков восстанавливает текст
	// (с точностью до завершающего перевода строки)
	joined := strings.Join(chunks, "")
	assert.Equal(t, text+"\n", joined)
}

func TestSplit_HardLimit(t *testing.T) {
	text := buildLines(100, 600)

	for i, chunk := range Split(text, DefaultSoftLimit, DefaultHardLimit) {
		assert.LessOrEqual(t, len(chunk), DefaultHardLimit,
			"chunk %d exceeds the hard limit", i)
	}
}

func TestSplit_LineBoundaries(t *testing.T) {
	text := buildLines(20, 400)

	for i, chunk := range Split(text, DefaultSoftLimit, DefaultHardLimit) {
		assert.True(t, strings.HasSuffix(chunk, "\n"), "chunk %d must end at a line boundary", i)
	}
}

// Одиночная строка длиннее жёсткого лимита отдаётся собственным
// oversized чанком (pass-through), без падения и без потери текста.
func TestSplit_SingleLongLine(t *testing.T) {
	text := strings.Repeat("x", 4000) // без переводов строки

	chunks := Split(text, DefaultSoftLimit, DefaultHardLimit)
	require.Len(t, chunks, 1)
	assert.Equal(t, text+"\n", chunks[0])
}

func TestSplit_ShortText(t *testing.T) {
	chunks := Split("hello\nworld", DefaultSoftLimit, DefaultHardLimit)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello\nworld\n", chunks[0])
}

func TestSplit_Order(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, strings.Repeat(string(rune('a'+i%26)), 100))
	}
	text := strings.Join(lines, "\n")

	chunks := Split(text, DefaultSoftLimit, DefaultHardLimit)
	joined := strings.Join(chunks, "")
	assert.Equal(t, text+"\n", joined, "chunks must preserve order and content")
}
