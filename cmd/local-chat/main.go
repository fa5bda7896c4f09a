// local-chat — терминальный чат с тем же ядром, что у Discord бота.
//
// Удобен для проверки модели, инструментов и нарезки ответов без
// поднятия Discord: та же конфигурация, тот же Orchestrator.
//
// Запуск:
//
//	local-chat -config config.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ilkoid/poncho-bot/pkg/chat"
	"github.com/ilkoid/poncho-bot/pkg/config"
	"github.com/ilkoid/poncho-bot/pkg/llm/openai"
	"github.com/ilkoid/poncho-bot/pkg/media"
	"github.com/ilkoid/poncho-bot/pkg/state"
	"github.com/ilkoid/poncho-bot/pkg/tools"
	"github.com/ilkoid/poncho-bot/pkg/tools/std"
	"github.com/ilkoid/poncho-bot/pkg/tui"
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

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	registry := tools.NewRegistry()
	tcfg := cfg.Transcription.GetDefaults()

	downloader := media.NewDownloader(media.DownloaderConfig{
		Binary:     tcfg.Binary,
		OutputFile: tcfg.AudioFile,
		Attempts:   tcfg.Attempts,
		SelfUpdate: tcfg.SelfUpdate,
	}, nil)

	whisperDef, ok := cfg.GetTranscriptionModel()
	if !ok {
		fmt.Fprintln(os.Stderr, "no model configuration for transcription")
		os.Exit(1)
	}

	// Локальный чат обходится без S3 архива; кэш — если настроен
	var cache *media.TranscriptCache
	if tcfg.CachePath != "" {
		if c, err := media.OpenTranscriptCache(tcfg.CachePath); err == nil {
			cache = c
			defer cache.Close()
		}
	}

	tool := std.NewTranscriptionTool(downloader, media.NewWhisperTranscriber(whisperDef), cache, nil)
	if err := registry.Register(tool); err != nil {
		fmt.Fprintf(os.Stderr, "tools error: %v\n", err)
		os.Exit(1)
	}

	chatDef, _ := cfg.GetChatModel("")

	orch, err := chat.New(chat.Config{
		Provider: openai.NewClient(chatDef),
		Registry: registry,
		Store:    state.NewStore(cfg.History.MaxTurns),
		Prefixes: []string{tui.LocalPrefix},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "orchestrator error: %v\n", err)
		os.Exit(1)
	}

	if err := tui.NewChatModel(orch, chatDef.ModelName).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		os.Exit(1)
	}
}
