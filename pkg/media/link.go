// Package media реализует пайплайн "ссылка → аудио → текст":
// нормализацию YouTube ссылок, скачивание аудио через yt-dlp
// и транскрипцию через Whisper API.
package media

import (
	"fmt"
	"net/url"
	"strings"
)

// watchURLFormat — каноническая форма ссылки на видео.
const watchURLFormat = "https://www.youtube.com/watch?v=%s"

// NormalizeLink приводит YouTube ссылку к канонической watch-форме.
//
// Принимаются две формы:
//   - короткая:  https://youtu.be/<id>[?...]
//   - полная:    https://[www.]youtube.com/watch?v=<id>[&...]
//
// Любые дополнительные query-параметры (si, ab_channel и т.д.)
// отбрасываются. Возвращает каноническую ссылку и идентификатор видео.
// Для любой другой формы возвращает ErrInvalidLink — без повторных попыток.
func NormalizeLink(raw string) (canonical string, videoID string, err error) {
	u, parseErr := url.Parse(strings.TrimSpace(raw))
	if parseErr != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidLink, raw)
	}

	switch strings.TrimPrefix(u.Hostname(), "www.") {
	case "youtu.be":
		// Короткая форма: идентификатор лежит в path
		videoID = strings.Trim(u.Path, "/")
	case "youtube.com":
		// Полная форма: идентификатор в query параметре v
		if u.Path != "/watch" {
			return "", "", fmt.Errorf("%w: %s", ErrInvalidLink, raw)
		}
		videoID = u.Query().Get("v")
	default:
		return "", "", fmt.Errorf("%w: %s", ErrInvalidLink, raw)
	}

	if videoID == "" || strings.Contains(videoID, "/") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidLink, raw)
	}

	return fmt.Sprintf(watchURLFormat, videoID), videoID, nil
}
