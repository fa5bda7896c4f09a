// Package std содержит стандартные инструменты бота.
//
// Tool: get_transcription
//   - Нормализует YouTube ссылку, скачивает аудио через yt-dlp,
//     транскрибирует через Whisper API
//   - Все доменные сбои возвращаются РЕЗУЛЬТАТОМ инструмента
//     (текстом для пользователя), а не ошибкой — модель пересказывает
//     их в ответе, цикл обработки не падает
//   - context.Context propagation на всех блокирующих операциях
package std

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ilkoid/poncho-bot/pkg/media"
	"github.com/ilkoid/poncho-bot/pkg/s3storage"
	"github.com/ilkoid/poncho-bot/pkg/tools"
	"github.com/ilkoid/poncho-bot/pkg/utils"
)

// Тексты доменных сбоев, видимые пользователю.
const (
	invalidLinkText    = "please provide a valid YouTube link (youtu.be/... or youtube.com/watch?v=...)"
	downloadFailText   = "failed to download the audio file"
	transcribeFailText = "failed to transcribe the audio file, please try again later"
)

// AudioDownloader — контракт скачивания аудио (реализация: media.Downloader).
type AudioDownloader interface {
	Download(ctx context.Context, link string) (string, error)
}

// TranscriptionTool — инструмент get_transcription.
type TranscriptionTool struct {
	downloader  AudioDownloader
	transcriber media.Transcriber

	// cache — SQLite кэш транскрипций; nil = без кэша.
	cache *media.TranscriptCache

	// archive — S3 архив аудио-артефактов; nil = без архива.
	archive s3storage.ClientInterface
}

// NewTranscriptionTool создаёт инструмент.
//
// cache и archive опциональны (nil отключает соответствующий шаг).
func NewTranscriptionTool(d AudioDownloader, t media.Transcriber, cache *media.TranscriptCache, archive s3storage.ClientInterface) *TranscriptionTool {
	return &TranscriptionTool{
		downloader:  d,
		transcriber: t,
		cache:       cache,
		archive:     archive,
	}
}

// Definition возвращает описание инструмента для LLM.
func (t *TranscriptionTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name: "get_transcription",
		Description: "Given a YouTube video link, download the audio of the video " +
			"and return its text transcription. Use when the user asks what is said " +
			"or discussed in a video.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"link": map[string]interface{}{
					"type":        "string",
					"description": "YouTube video URL (youtu.be short link or youtube.com/watch link)",
				},
			},
			"required": []string{"link"},
		},
	}
}

// Execute выполняет транскрипцию ("Raw In, String Out").
//
// Порядок: нормализация ссылки → кэш → скачивание (с повторами) →
// архив (опционально) → Whisper → кэш. Временный аудиофайл удаляется
// на ЛЮБОМ пути выхода после успешного скачивания — включая сбой
// транскрипции.
//
// Ошибкой возвращается только недекодируемый JSON аргументов
// (tools.ErrBadArguments); доменные сбои — текстом результата.
func (t *TranscriptionTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %v", tools.ErrBadArguments, err)
	}

	// 1. Нормализация ссылки — без повторных попыток
	canonical, videoID, err := media.NormalizeLink(args.Link)
	if err != nil {
		if errors.Is(err, media.ErrInvalidLink) {
			utils.Warn("Invalid video link from model", "link", args.Link)
			return invalidLinkText, nil
		}
		return "", err
	}

	// 2. Кэш: видео могло быть транскрибировано раньше
	if t.cache != nil {
		if transcript, ok, cacheErr := t.cache.Get(videoID); cacheErr != nil {
			utils.Warn("Transcript cache lookup failed", "video_id", videoID, "error", cacheErr)
		} else if ok {
			utils.Info("Transcript cache hit", "video_id", videoID)
			return transcript, nil
		}
	}

	// 3. Скачивание аудио (политика повторов внутри Downloader)
	audioPath, err := t.downloader.Download(ctx, canonical)
	if err != nil {
		utils.Error("Audio download exhausted all attempts", "link", canonical, "error", err)
		return downloadFailText, nil
	}

	// Гарантированная уборка временного файла на любом пути выхода
	defer func() {
		if rmErr := os.Remove(audioPath); rmErr != nil {
			utils.Warn("Failed to remove temp audio file", "path", audioPath, "error", rmErr)
		}
	}()

	// 4. Архив аудио-артефакта (best-effort, до удаления локального файла)
	if t.archive != nil {
		if archErr := t.archive.UploadFile(ctx, audioPath, s3storage.ArchiveKey(videoID)); archErr != nil {
			utils.Warn("Failed to archive audio file", "video_id", videoID, "error", archErr)
		}
	}

	// 5. Транскрипция
	transcript, err := t.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		utils.Error("Transcription failed", "video_id", videoID, "error", err)
		return transcribeFailText, nil
	}

	// 6. Кэш на будущее (best-effort)
	if t.cache != nil {
		if cacheErr := t.cache.Put(videoID, transcript); cacheErr != nil {
			utils.Warn("Failed to cache transcript", "video_id", videoID, "error", cacheErr)
		}
	}

	utils.Info("Transcription completed", "video_id", videoID, "length", len(transcript))
	return transcript, nil
}

// Проверка что TranscriptionTool реализует tools.Tool
var _ tools.Tool = (*TranscriptionTool)(nil)
