package state

import "errors"

// ErrUnknownConversation — попытка Append в диалог, который никогда
// не создавался. Защитная ошибка: Orchestrator всегда делает
// GetOrCreate перед Append, так что на практике она не возникает.
var ErrUnknownConversation = errors.New("unknown conversation")
