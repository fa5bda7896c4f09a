// poncho-bot — Discord бот поверх OpenAI-совместимой модели.
//
// Реагирует на упоминания в каналах (разовый вопрос) и тредах
// (диалог с историей). Модель может вызвать инструмент
// get_transcription для транскрипции YouTube видео.
//
// Запуск:
//
//	poncho-bot -config config.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ilkoid/poncho-bot/internal/bot"
	"github.com/ilkoid/poncho-bot/pkg/chat"
	"github.com/ilkoid/poncho-bot/pkg/config"
	"github.com/ilkoid/poncho-bot/pkg/llm/openai"
	"github.com/ilkoid/poncho-bot/pkg/media"
	"github.com/ilkoid/poncho-bot/pkg/s3storage"
	"github.com/ilkoid/poncho-bot/pkg/state"
	"github.com/ilkoid/poncho-bot/pkg/tools"
	"github.com/ilkoid/poncho-bot/pkg/tools/std"
	"github.com/ilkoid/poncho-bot/pkg/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	flag.Parse()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Close()

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Error("Failed to load config", "error", err)
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	registry, cleanup, err := buildRegistry(cfg)
	if err != nil {
		utils.Error("Failed to build tools registry", "error", err)
		fmt.Fprintf(os.Stderr, "tools error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	chatDef, _ := cfg.GetChatModel("")
	provider := openai.NewClient(chatDef)
	store := state.NewStore(cfg.History.MaxTurns)
	transport := cfg.Transport.GetDefaults()

	b, err := bot.New(cfg.Discord.BotToken, transport)
	if err != nil {
		utils.Error("Failed to create discord bot", "error", err)
		fmt.Fprintf(os.Stderr, "discord error: %v\n", err)
		os.Exit(1)
	}

	// Префиксы упоминания зависят от ID бота
	me, err := b.Me()
	if err != nil {
		utils.Error("Failed to fetch bot identity", "error", err)
		fmt.Fprintf(os.Stderr, "discord error: %v\n", err)
		os.Exit(1)
	}

	orch, err := chat.New(chat.Config{
		Provider: provider,
		Registry: registry,
		Store:    store,
		Prefixes: bot.MentionPrefixes(me.ID),
		Limits: chat.Limits{
			Single: transport.SingleLimit,
			Soft:   transport.SoftLimit,
			Hard:   transport.HardLimit,
		},
	})
	if err != nil {
		utils.Error("Failed to create orchestrator", "error", err)
		fmt.Fprintf(os.Stderr, "orchestrator error: %v\n", err)
		os.Exit(1)
	}

	b.SetOrchestrator(orch)

	utils.Info("Starting poncho-bot", "model", chatDef.ModelName, "bot_id", me.ID)
	if err := b.Run(ctx); err != nil {
		utils.Error("Bot stopped with error", "error", err)
		fmt.Fprintf(os.Stderr, "bot error: %v\n", err)
		os.Exit(1)
	}
}

// buildRegistry собирает реестр инструментов из конфигурации.
//
// Возвращает функцию cleanup для закрытия кэша транскрипций.
func buildRegistry(cfg *config.AppConfig) (*tools.Registry, func(), error) {
	registry := tools.NewRegistry()
	cleanup := func() {}

	tcfg := cfg.Transcription.GetDefaults()

	downloader := media.NewDownloader(media.DownloaderConfig{
		Binary:     tcfg.Binary,
		OutputFile: tcfg.AudioFile,
		Attempts:   tcfg.Attempts,
		SelfUpdate: tcfg.SelfUpdate,
	}, nil)

	whisperDef, ok := cfg.GetTranscriptionModel()
	if !ok {
		return nil, cleanup, fmt.Errorf("no model configuration for transcription")
	}
	transcriber := media.NewWhisperTranscriber(whisperDef)

	// Кэш транскрипций опционален: без него каждое видео гоняется заново
	var cache *media.TranscriptCache
	if tcfg.CachePath != "" {
		var err error
		cache, err = media.OpenTranscriptCache(tcfg.CachePath)
		if err != nil {
			utils.Warn("Transcript cache unavailable, continuing without it", "error", err)
			cache = nil
		} else {
			cleanup = func() { cache.Close() }
		}
	}

	// Архив аудио-артефактов опционален
	var archive s3storage.ClientInterface
	if cfg.S3.Enabled {
		client, err := s3storage.New(cfg.S3)
		if err != nil {
			utils.Warn("S3 archive unavailable, continuing without it", "error", err)
		} else {
			archive = client
		}
	}

	tool := std.NewTranscriptionTool(downloader, transcriber, cache, archive)
	if err := registry.Register(tool); err != nil {
		return nil, cleanup, err
	}

	return registry, cleanup, nil
}
