package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Discord       DiscordConfig       `yaml:"discord"`
	Models        ModelsConfig        `yaml:"models"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Transport     TransportConfig     `yaml:"transport"`
	History       HistoryConfig       `yaml:"history"`
	S3            S3Config            `yaml:"s3"`
	App           AppSpecific         `yaml:"app"`
}

// DiscordConfig — настройки Discord транспорта.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"` // Поддерживает ${VAR}
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultChat   string              `yaml:"default_chat"`   // Алиас чат-модели по умолчанию
	Transcription string              `yaml:"transcription"`  // Алиас модели транскрипции (whisper)
	Definitions   map[string]ModelDef `yaml:"definitions"`    // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string   `yaml:"provider"`   // "openai", "zai" и т.д.
	ModelName   string   `yaml:"model_name"` // Реальное имя в API
	APIKey      string   `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string   `yaml:"base_url"`   // Custom endpoint для совместимых API
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature float64  `yaml:"temperature"`
	Timeout     Duration `yaml:"timeout"` // Строки вида "60s", "1m"
}

// Duration — обёртка для разбора YAML строк вида "60s", "1m"
// в time.Duration (yaml.v3 сам этого не умеет).
type Duration time.Duration

// UnmarshalYAML реализует yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std возвращает стандартный time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// TranscriptionConfig — настройки инструмента get_transcription.
type TranscriptionConfig struct {
	Binary     string `yaml:"binary"`      // Имя/путь yt-dlp
	AudioFile  string `yaml:"audio_file"`  // Куда скачивать аудио
	Attempts   int    `yaml:"attempts"`    // Число попыток скачивания
	SelfUpdate bool   `yaml:"self_update"` // Обновлять yt-dlp между неудачными попытками
	CachePath  string `yaml:"cache_path"`  // Путь к SQLite кэшу транскрипций ("" = без кэша)
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *TranscriptionConfig) GetDefaults() TranscriptionConfig {
	result := *c // Копируем текущие значения

	if result.Binary == "" {
		result.Binary = "yt-dlp"
	}
	if result.AudioFile == "" {
		result.AudioFile = "downloaded_audio.m4a"
	}
	if result.Attempts == 0 {
		result.Attempts = 3
	}

	return result
}

// TransportConfig — лимиты и темп исходящих сообщений.
type TransportConfig struct {
	SingleLimit int     `yaml:"single_limit"` // Порог отправки одним сообщением
	SoftLimit   int     `yaml:"soft_limit"`   // Целевой размер чанка
	HardLimit   int     `yaml:"hard_limit"`   // Жёсткий лимит сообщения
	SendRate    float64 `yaml:"send_rate"`    // Сообщений в секунду
	SendBurst   int     `yaml:"send_burst"`   // Burst для rate limiter
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *TransportConfig) GetDefaults() TransportConfig {
	result := *c

	if result.SingleLimit == 0 {
		result.SingleLimit = 1900
	}
	if result.SoftLimit == 0 {
		result.SoftLimit = 1500
	}
	if result.HardLimit == 0 {
		result.HardLimit = 2000
	}
	if result.SendRate == 0 {
		result.SendRate = 1 // сообщение в секунду
	}
	if result.SendBurst == 0 {
		result.SendBurst = 5
	}

	return result
}

// HistoryConfig — настройки хранилища историй.
type HistoryConfig struct {
	// MaxTurns — мягкий лимит сообщений на тред; 0 = без лимита
	// (как в исходном поведении: история растёт неограниченно).
	MaxTurns int `yaml:"max_turns"`
}

// S3Config — настройки объектного хранилища для архива аудио-артефактов.
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"` // Префикс ключей в бакете (например, "audio/")
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug bool `yaml:"debug"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Discord.BotToken == "" {
		return fmt.Errorf("discord.bot_token is required")
	}
	if c.Models.DefaultChat == "" {
		return fmt.Errorf("models.default_chat is required")
	}
	if _, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
		return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
	}
	if c.Models.Transcription != "" {
		if _, ok := c.Models.Definitions[c.Models.Transcription]; !ok {
			return fmt.Errorf("transcription model '%s' is not defined in definitions", c.Models.Transcription)
		}
	}
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			return fmt.Errorf("s3.endpoint is required when s3.enabled")
		}
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required when s3.enabled")
		}
	}
	return nil
}

// Helper методы для удобства доступа (Syntactic sugar)

// GetChatModel возвращает конфигурацию чат-модели по умолчанию или по имени.
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}

// GetTranscriptionModel возвращает конфигурацию модели транскрипции.
//
// Если алиас не задан, используется api_key чат-модели по умолчанию
// с моделью whisper по умолчанию (решает адаптер).
func (c *AppConfig) GetTranscriptionModel() (ModelDef, bool) {
	if c.Models.Transcription != "" {
		m, ok := c.Models.Definitions[c.Models.Transcription]
		return m, ok
	}

	chat, ok := c.GetChatModel("")
	if !ok {
		return ModelDef{}, false
	}
	// Наследуем ключ и endpoint от чат-модели, имя модели пустое —
	// адаптер подставит whisper по умолчанию.
	return ModelDef{
		Provider: chat.Provider,
		APIKey:   chat.APIKey,
		BaseURL:  chat.BaseURL,
	}, true
}
