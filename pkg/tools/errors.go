package tools

import "errors"

// Ошибки диспетчеризации инструментов.
//
// Разделяем "инструмент не найден" и "аргументы не декодируются":
// вызывающий код реагирует на них по-разному (errors.Is).
var (
	// ErrUnknownTool — запрошенный инструмент не зарегистрирован в реестре.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrBadArguments — JSON аргументов вызова не декодируется в схему
	// инструмента. Отдельный вид ошибки, не смешивается с ошибками
	// выполнения самого инструмента.
	ErrBadArguments = errors.New("bad tool arguments")
)
