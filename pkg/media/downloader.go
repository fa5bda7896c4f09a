package media

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/ilkoid/poncho-bot/pkg/utils"
)

// CommandRunner — абстракция над запуском внешней команды.
//
// Нужна для подмены в тестах: реальный Downloader гоняет yt-dlp,
// тесты подставляют фейковый runner с заданной последовательностью
// результатов.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner — боевой runner поверх os/exec.
type ExecRunner struct{}

// Run запускает команду и ждёт её завершения.
// Ненулевой exit code возвращается как ошибка exec.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Run()
}

// Downloader скачивает аудиодорожку видео через yt-dlp.
//
// Политика повторов: до attempts попыток. После каждой неудачной
// попытки, за которой последует ещё одна, вызывается recovery-хук
// (по умолчанию самообновление yt-dlp: `yt-dlp -U`). Хук отвязан от
// счётчика попыток — его ошибка логируется и не прерывает цикл.
type Downloader struct {
	runner   CommandRunner
	binary   string // Путь/имя yt-dlp
	outFile  string // Куда сохранять аудио
	attempts int    // Число попыток скачивания

	// recover вызывается между неудачными попытками.
	// nil — без recovery-действия.
	recover func(ctx context.Context) error
}

// DownloaderConfig — настройки скачивания.
type DownloaderConfig struct {
	Binary     string // Имя/путь yt-dlp (default: "yt-dlp")
	OutputFile string // Файл для аудио (default: "downloaded_audio.m4a")
	Attempts   int    // Число попыток (default: 3)
	SelfUpdate bool   // Запускать `yt-dlp -U` между неудачными попытками
}

// NewDownloader создаёт Downloader с заданным runner'ом.
//
// runner == nil — используется боевой ExecRunner.
func NewDownloader(cfg DownloaderConfig, runner CommandRunner) *Downloader {
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "downloaded_audio.m4a"
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}

	d := &Downloader{
		runner:   runner,
		binary:   cfg.Binary,
		outFile:  cfg.OutputFile,
		attempts: cfg.Attempts,
	}

	if cfg.SelfUpdate {
		d.recover = func(ctx context.Context) error {
			return runner.Run(ctx, cfg.Binary, "-U")
		}
	}

	return d
}

// Download скачивает аудио по канонической ссылке.
//
// Возвращает путь к скачанному файлу. После исчерпания всех попыток
// возвращает ErrDownloadFailed — вызывающий код конвертирует его в
// текст для пользователя, без падения цикла обработки.
func (d *Downloader) Download(ctx context.Context, link string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= d.attempts; attempt++ {
		utils.Info("Attempting to download audio", "link", link, "attempt", attempt)

		err := d.runner.Run(ctx, d.binary, link, "--format", "m4a", "-o", d.outFile)
		if err == nil {
			utils.Info("Audio downloaded", "link", link, "file", d.outFile)
			return d.outFile, nil
		}

		lastErr = err
		utils.Warn("Audio download attempt failed", "attempt", attempt, "error", err)

		// Recovery-хук между попытками (не после последней)
		if d.recover != nil && attempt < d.attempts {
			if recErr := d.recover(ctx); recErr != nil {
				utils.Warn("Recovery action failed", "error", recErr)
			}
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrDownloadFailed, d.attempts, lastErr)
}
