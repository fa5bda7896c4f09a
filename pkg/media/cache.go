package media

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TranscriptCache — SQLite кэш готовых транскрипций.
//
// Ключ — идентификатор видео (из канонической ссылки). Повторный
// запрос того же видео не гоняет скачивание и Whisper заново.
//
// Кэширует артефакты инструмента, НЕ историю диалога — история
// по-прежнему живёт только в памяти процесса.
type TranscriptCache struct {
	db *sql.DB
}

// OpenTranscriptCache открывает (и при необходимости создаёт) кэш по пути.
func OpenTranscriptCache(path string) (*TranscriptCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript cache: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS transcripts (
		video_id   TEXT PRIMARY KEY,
		transcript TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init transcript cache schema: %w", err)
	}

	return &TranscriptCache{db: db}, nil
}

// Get возвращает транскрипцию по идентификатору видео.
//
// Второй результат false — записи нет (это не ошибка).
func (c *TranscriptCache) Get(videoID string) (string, bool, error) {
	var transcript string
	err := c.db.QueryRow(
		"SELECT transcript FROM transcripts WHERE video_id = ?", videoID,
	).Scan(&transcript)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("transcript cache query failed: %w", err)
	}
	return transcript, true, nil
}

// Put сохраняет транскрипцию. Существующая запись перезаписывается.
func (c *TranscriptCache) Put(videoID, transcript string) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO transcripts (video_id, transcript, created_at) VALUES (?, ?, ?)",
		videoID, transcript, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("transcript cache insert failed: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой.
func (c *TranscriptCache) Close() error {
	return c.db.Close()
}
