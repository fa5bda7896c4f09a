// Package bot — адаптер Discord Gateway поверх ядра pkg/chat.
//
// Тонкий I/O слой: детект упоминания, определение треда, события
// создания тредов, отправка сообщений с пейсингом. Вся логика диалога
// живёт в chat.Orchestrator.
package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/ilkoid/poncho-bot/pkg/chat"
	"github.com/ilkoid/poncho-bot/pkg/config"
	"github.com/ilkoid/poncho-bot/pkg/utils"
)

// Bot связывает Discord сессию и Orchestrator.
type Bot struct {
	session *discordgo.Session
	orch    *chat.Orchestrator

	// limiter пейсит исходящие сообщения: нарезанный на чанки ответ
	// не должен выстреливать очередью в API.
	limiter *rate.Limiter

	// ctx живёт от Run до остановки — обработчики discordgo не
	// получают контекст, поэтому держим свой.
	ctx context.Context
}

// New создаёт Bot с Discord сессией (ещё не открытой).
//
// Orchestrator подключается отдельно через SetOrchestrator: для его
// конфигурации нужны префиксы упоминания, а они зависят от ID бота
// (см. Me).
func New(token string, transport config.TransportConfig) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	// Боту нужны сообщения гильдий (включая треды) и их содержимое
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return &Bot{
		session: session,
		limiter: rate.NewLimiter(rate.Limit(transport.SendRate), transport.SendBurst),
	}, nil
}

// Me возвращает учётку бота (REST запрос, gateway ещё не нужен).
func (b *Bot) Me() (*discordgo.User, error) {
	user, err := b.session.User("@me")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return user, nil
}

// SetOrchestrator подключает ядро обработки. Обязателен до Run.
func (b *Bot) SetOrchestrator(orch *chat.Orchestrator) {
	b.orch = orch
}

// Run открывает gateway-соединение и блокируется до отмены контекста.
func (b *Bot) Run(ctx context.Context) error {
	if b.orch == nil {
		return fmt.Errorf("orchestrator is not set (call SetOrchestrator)")
	}
	b.ctx = ctx

	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onThreadCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	utils.Info("Logged in", "user", b.session.State.User.Username)

	<-ctx.Done()

	utils.Info("Closing discord session")
	return b.session.Close()
}

// MentionPrefixes возвращает варианты адресации бота.
//
// Discord сериализует упоминание как <@id> или <@!id> (с никнеймом).
func MentionPrefixes(botID string) []string {
	return []string{
		fmt.Sprintf("<@%s> ", botID),
		fmt.Sprintf("<@!%s> ", botID),
	}
}

// onThreadCreate логирует создание треда и заводит пустую историю.
func (b *Bot) onThreadCreate(s *discordgo.Session, t *discordgo.ThreadCreate) {
	utils.Info("Thread created", "thread_id", t.ID, "name", t.Name)
	b.orch.ResetConversation(t.ID)
}

// onMessageCreate обрабатывает все сообщения сервера, реагируя только
// на упоминания бота.
//
// Упоминание в обычном канале — разовый вопрос без истории;
// упоминание в треде — диалог с контекстом.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Бот не отвечает сам себе
	if m.Author.ID == s.State.User.ID {
		return
	}

	if !mentionsUser(m.Mentions, s.State.User.ID) {
		return
	}

	ev := chat.MentionEvent{
		Content: m.Content,
		Author:  m.Author.Username,
	}

	// Тред? Тогда ключ диалога — идентификатор канала-треда
	if ch, err := s.State.Channel(m.ChannelID); err == nil && isThread(ch.Type) {
		ev.ThreadID = m.ChannelID
	}

	sender := &channelSender{bot: b, channelID: m.ChannelID}
	if err := b.orch.HandleMention(b.ctx, ev, sender); err != nil {
		utils.Error("Failed to handle mention", "channel_id", m.ChannelID, "error", err)
	}
}

// mentionsUser проверяет что userID есть в списке упомянутых.
func mentionsUser(mentions []*discordgo.User, userID string) bool {
	for _, u := range mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// isThread проверяет что тип канала — публичный или приватный тред.
func isThread(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildPublicThread ||
		t == discordgo.ChannelTypeGuildPrivateThread
}

// channelSender реализует chat.Sender для одного канала/треда.
type channelSender struct {
	bot       *Bot
	channelID string
}

// Send отправляет одно сообщение, дождавшись слота rate limiter'а.
func (c *channelSender) Send(ctx context.Context, text string) error {
	if err := c.bot.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := c.bot.session.ChannelMessageSend(c.channelID, text); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", c.channelID, err)
	}
	return nil
}
