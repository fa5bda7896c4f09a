package media

import "errors"

// Ошибки медиа-пайплайна (нормализация ссылки, скачивание, транскрипция).
//
// Каждый этап имеет свой вид ошибки — инструмент get_transcription
// конвертирует их в разные тексты для пользователя.
var (
	// ErrInvalidLink — ссылка не является поддерживаемой YouTube ссылкой.
	ErrInvalidLink = errors.New("invalid video link")

	// ErrDownloadFailed — все попытки скачивания аудио исчерпаны.
	ErrDownloadFailed = errors.New("audio download failed")

	// ErrTranscription — API транскрипции вернул ошибку.
	ErrTranscription = errors.New("transcription failed")
)
