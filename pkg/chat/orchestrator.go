package chat

import (
	"context"
	"fmt"

	"github.com/ilkoid/poncho-bot/pkg/llm"
	"github.com/ilkoid/poncho-bot/pkg/state"
	"github.com/ilkoid/poncho-bot/pkg/tools"
	"github.com/ilkoid/poncho-bot/pkg/utils"
)

// FallbackText — ответ пользователю при любой ошибке модели или
// инструмента. Ошибки не покидают обработчик события.
const FallbackText = "I'm sorry, I couldn't generate a response for you. Please try again later"

// workingNotice — промежуточное уведомление пока выполняется инструмент.
const workingNotice = "Working on it, this might take a minute..."

// phase — состояние шага диалога.
//
// Явная машина состояний вместо инлайнового control flow:
// awaitingModel → awaitingTool → awaitingModel (финал).
type phase int

const (
	awaitingModel phase = iota
	awaitingTool
)

// Sender — исходящий канал для одного события (тред/канал, откуда
// пришло упоминание). Вызывается по разу на каждый чанк.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// MentionEvent — входящее упоминание бота.
type MentionEvent struct {
	Content  string // Сырой текст сообщения (с префиксом упоминания)
	Author   string // Автор, только для логов
	ThreadID string // Ключ диалога; пустой = обычный канал без истории
}

// Limits — лимиты транспорта для доставки ответа.
type Limits struct {
	Single int // Порог отправки одним сообщением
	Soft   int // Целевой размер чанка
	Hard   int // Жёсткий лимит сообщения
}

// Orchestrator — верхнеуровневый цикл обработки упоминания:
// формат → история → модель → (инструмент → модель) → доставка.
//
// Владеет хранилищем историй (никакого глобального состояния).
// Thread-safe: события разных тредов обрабатываются параллельно,
// события одного треда сериализуются через state.Store.LockKey.
type Orchestrator struct {
	provider llm.Provider
	registry *tools.Registry
	store    *state.Store
	prefixes []string
	limits   Limits
}

// Config конфигурация для создания Orchestrator.
type Config struct {
	// Provider — провайдер языковой модели (обязательный)
	Provider llm.Provider

	// Registry — реестр зарегистрированных инструментов (обязательный)
	Registry *tools.Registry

	// Store — хранилище историй диалогов (обязательный)
	Store *state.Store

	// Prefixes — варианты префикса упоминания бота (обязательный)
	Prefixes []string

	// Limits — лимиты транспорта (нулевые поля = дефолты Discord)
	Limits Limits
}

// New создаёт Orchestrator с заданной конфигурацией.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("cfg.Provider is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("cfg.Registry is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("cfg.Store is required")
	}
	if len(cfg.Prefixes) == 0 {
		return nil, fmt.Errorf("cfg.Prefixes is required")
	}

	if cfg.Limits.Single <= 0 {
		cfg.Limits.Single = DefaultSingleLimit
	}
	if cfg.Limits.Soft <= 0 {
		cfg.Limits.Soft = DefaultSoftLimit
	}
	if cfg.Limits.Hard <= 0 {
		cfg.Limits.Hard = DefaultHardLimit
	}

	return &Orchestrator{
		provider: cfg.Provider,
		registry: cfg.Registry,
		store:    cfg.Store,
		prefixes: cfg.Prefixes,
		limits:   cfg.Limits,
	}, nil
}

// ResetConversation сбрасывает историю диалога (сигнал создания треда).
func (o *Orchestrator) ResetConversation(key string) {
	o.store.Reset(key)
}

// HandleMention обрабатывает одно упоминание бота от начала до конца.
//
// Шаги:
//  1. Формат — user-сообщение с инструкциями форматирования
//  2. История — для треда: GetOrCreate + Append под по-ключевым локом
//  3. Первый вызов модели
//  4. Tool-ветка — уведомление, dispatch, второй вызов модели
//  5. Persist — финальный ответ (и tool round-trip) в историю треда
//  6. Доставка — одним сообщением или чанками
//
// Любая ошибка модели/инструмента превращается в FallbackText —
// наружу уходят только ошибки транспорта (send) и нарушение
// контракта форматтера (ErrNoMention).
func (o *Orchestrator) HandleMention(ctx context.Context, ev MentionEvent, send Sender) error {
	// 1. Формат
	userMsg, err := FormatUserQuery(ev.Content, o.prefixes)
	if err != nil {
		return err
	}

	utils.Info("Bot mentioned",
		"author", ev.Author,
		"thread_id", ev.ThreadID,
		"query_length", len(userMsg.Content))

	threaded := ev.ThreadID != ""

	// 2. История. Лок ключа держим до конца обработки: два события
	// в одном треде не должны перемешивать историю.
	var request []llm.Message
	if threaded {
		unlock := o.store.LockKey(ev.ThreadID)
		defer unlock()

		o.store.GetOrCreate(ev.ThreadID)
		if err := o.store.Append(ev.ThreadID, userMsg); err != nil {
			// Защитная ветка: GetOrCreate выше исключает этот случай
			return err
		}
		request = o.store.History(ev.ThreadID)
	} else {
		request = []llm.Message{userMsg}
	}

	// 3-4. Диалог с моделью (возможно с одним tool round-trip)
	replies, err := o.converse(ctx, request, send)
	if err != nil {
		utils.Error("Conversation failed", "thread_id", ev.ThreadID, "error", err)
		return o.deliver(ctx, FallbackText, send)
	}

	// 5. Persist: ответ и tool round-trip дописываются в историю
	if threaded {
		for _, msg := range replies {
			if err := o.store.Append(ev.ThreadID, msg); err != nil {
				return err
			}
		}
	}

	// 6. Доставка финального текста
	final := utils.StripFences(replies[len(replies)-1].Content)
	if final == "" {
		final = FallbackText
	}
	return o.deliver(ctx, final, send)
}

// converse ведёт диалог с моделью по явной машине состояний.
//
// Возвращает все сообщения, которые должны попасть в историю:
// [финальный ответ] или [assistant с tool call, tool результат,
// финальный ответ]. Спецификация допускает ровно один tool round —
// tool calls во втором ответе игнорируются (логируются).
func (o *Orchestrator) converse(ctx context.Context, request []llm.Message, send Sender) ([]llm.Message, error) {
	var replies []llm.Message
	toolRoundDone := false
	current := awaitingModel

	var assistant llm.Message

	for {
		switch current {
		case awaitingModel:
			reply, err := o.provider.Generate(ctx, request, o.registry.GetDefinitions())
			if err != nil {
				return nil, err
			}

			if reply.HasToolCalls() && !toolRoundDone {
				assistant = reply
				current = awaitingTool
				continue
			}

			if reply.HasToolCalls() {
				utils.Warn("Model requested another tool call after tool round, ignoring",
					"tool", reply.ToolCalls[0].Name)
			}

			return append(replies, reply), nil

		case awaitingTool:
			// Промежуточное уведомление: инструмент может работать долго.
			// Best-effort — ошибка отправки не прерывает обработку.
			if err := send.Send(ctx, workingNotice); err != nil {
				utils.Warn("Failed to send working notice", "error", err)
			}

			call := assistant.ToolCalls[0]
			utils.Info("Dispatching tool call", "tool", call.Name, "call_id", call.ID)

			toolMsg, err := o.registry.Dispatch(ctx, call)
			if err != nil {
				return nil, err
			}

			request = append(request, assistant, toolMsg)
			replies = append(replies, assistant, toolMsg)
			toolRoundDone = true
			current = awaitingModel
		}
	}
}

// deliver отправляет текст одним сообщением или чанками по порядку.
func (o *Orchestrator) deliver(ctx context.Context, text string, send Sender) error {
	if len(text) < o.limits.Single {
		return send.Send(ctx, text)
	}

	for _, chunk := range Split(text, o.limits.Soft, o.limits.Hard) {
		if err := send.Send(ctx, chunk); err != nil {
			return fmt.Errorf("failed to send chunk: %w", err)
		}
	}
	return nil
}
