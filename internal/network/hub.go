package network

import (
	"sync"

	"wasteland-server/internal/domain"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/logger"
)

// Update - событие для локальных потребителей (интерфейс, бот, отладка).
type Update struct {
	Type      api.MessageType
	ActionID  string
	Action    string
	Events    []domain.Event
	Narration string
	Reason    string
	Message   string
	State     *api.StateSyncPayload
	Combat    *api.CombatEndPayload
	// Local - отказ оптимистичной проверки, до хоста действие не дошло.
	Local bool
}

// Broadcaster занимается только рассылкой обновлений подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: имя подписчика -> Личный канал
	subscribers map[string]chan Update
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan Update),
	}
}

// Register создает личный канал подписчика
func (b *Broadcaster) Register(name string) <-chan Update {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[name]; ok {
		close(old)
	}

	ch := make(chan Update, 256)
	b.subscribers[name] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[name]; ok {
		close(ch)
		delete(b.subscribers, name)
	}
}

// Broadcast отправляет всем. Медленный подписчик теряет обновление, цикл хоста не ждет.
func (b *Broadcaster) Broadcast(u Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for name, ch := range b.subscribers {
		select {
		case ch <- u:
		default:
			logger.For("hub").WithField("subscriber", name).Warn("Subscriber channel full, update dropped")
		}
	}
}

// Close закрывает все каналы подписчиков.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, name)
	}
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
