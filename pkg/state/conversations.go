// Package state предоставляет thread-safe хранилище историй диалогов.
//
// Store живёт в памяти процесса: истории НЕ переживают рестарт
// (осознанное решение — бот не хранит диалоги персистентно).
// Владелец Store — Orchestrator, никакого глобального состояния.
//
// Конвенции:
//   - Thread-safe доступ через sync.RWMutex, никаких глобальных переменных
//   - Все ошибки возвращаются, никаких panic в бизнес-логике
package state

import (
	"sync"

	"github.com/ilkoid/poncho-bot/pkg/llm"
)

// Store — отображение "ключ диалога → упорядоченная история сообщений".
//
// Ключ — идентификатор треда/канала. Диалог создаётся при первом
// обращении (GetOrCreate) и живёт до конца процесса.
//
// Помимо общей блокировки на map, Store выдаёт по-ключевые мьютексы
// (LockKey): обработчик события держит такой мьютекс на всё время
// обработки упоминания, чтобы два события в одном треде не
// перемешивали историю. События в разных тредах идут параллельно.
type Store struct {
	mu            sync.RWMutex
	conversations map[string][]llm.Message
	keyLocks      map[string]*sync.Mutex

	// maxTurns — мягкий лимит длины истории; 0 = без лимита.
	// При превышении остаются только новейшие maxTurns сообщений.
	maxTurns int
}

// NewStore создаёт пустое хранилище.
//
// maxTurns > 0 включает обрезку истории до новейших maxTurns сообщений
// (защита от неограниченного роста payload'а в долгоживущих тредах);
// 0 — без ограничения.
func NewStore(maxTurns int) *Store {
	return &Store{
		conversations: make(map[string][]llm.Message),
		keyLocks:      make(map[string]*sync.Mutex),
		maxTurns:      maxTurns,
	}
}

// GetOrCreate возвращает копию истории по ключу, создавая пустой
// диалог при первом обращении.
//
// Идемпотентен: два вызова подряд без Append между ними возвращают
// равные последовательности.
func (s *Store) GetOrCreate(key string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[key]; !ok {
		s.conversations[key] = make([]llm.Message, 0)
	}

	return copyMessages(s.conversations[key])
}

// Append добавляет сообщение в историю диалога.
//
// Возвращает ErrUnknownConversation если диалог никогда не создавался —
// вызывающий код обязан сначала сделать GetOrCreate.
func (s *Store) Append(key string, msg llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.conversations[key]
	if !ok {
		return ErrUnknownConversation
	}

	history = append(history, msg)

	// Обрезка: оставляем только новейшие maxTurns сообщений
	if s.maxTurns > 0 && len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]

		// Граница обрезки не должна отрывать tool-ответ от его
		// assistant tool call: payload, начинающийся с tool-сообщения,
		// OpenAI-совместимые API отвергают.
		for len(history) > 0 && history[0].Role == llm.RoleTool {
			history = history[1:]
		}
	}

	s.conversations[key] = history
	return nil
}

// Reset очищает историю диалога (сигнал создания нового треда).
//
// Для неизвестного ключа просто создаёт пустой диалог.
func (s *Store) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[key] = make([]llm.Message, 0)
}

// History возвращает копию истории без побочного создания диалога.
//
// Для неизвестного ключа возвращает пустой срез.
func (s *Store) History(key string) []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMessages(s.conversations[key])
}

// LockKey захватывает мьютекс ключа и возвращает функцию освобождения.
//
// Использование:
//
//	unlock := store.LockKey(threadID)
//	defer unlock()
func (s *Store) LockKey(key string) func() {
	s.mu.Lock()
	lock, ok := s.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.keyLocks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// copyMessages возвращает копию среза, чтобы избежать race condition
// при чтении истории во время конкурентного Append.
func copyMessages(src []llm.Message) []llm.Message {
	dst := make([]llm.Message, len(src))
	copy(dst, src)
	return dst
}
