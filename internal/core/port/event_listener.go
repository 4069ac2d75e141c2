package port

import "context"

// EventListenerPort - входящий адаптер, который слушает очередь и вызывает use case
type EventListenerPort interface {
	// Start блокируется до отмены контекста или фатальной ошибки
	Start(ctx context.Context) error

	// Close дожидается активных обработчиков и освобождает ресурсы
	Close() error
}
