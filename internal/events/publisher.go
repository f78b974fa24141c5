package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/metrics"
)

// Топики доменных событий.
const (
	TopicUserEvents         = "user-events"
	TopicCourseEvents       = "course-events"
	TopicEnrollmentEvents   = "enrollment-events"
	TopicAssignmentEvents   = "assignment-events"
	TopicSubmissionEvents   = "submission-events"
	TopicAttendanceEvents   = "attendance-events"
	TopicNotificationEvents = "notification-events"
)

// Event — доменное событие. Data сериализуемо в JSON.
type Event struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler обрабатывает событие топика. Ошибки обработчик глотает сам:
// публикация — fire-and-forget, отправителя результат не волнует.
type Handler func(ev Event)

// Publisher раскладывает события по подписчикам через буферизованную
// очередь. Переполненная очередь роняет событие с записью в лог,
// но никогда не блокирует отправителя.
type Publisher struct {
	log   *zap.Logger
	queue chan Event

	mu      sync.RWMutex
	subs    map[string][]Handler
	stopped bool

	wg   sync.WaitGroup
	once sync.Once
}

func NewPublisher(log *zap.Logger, queueSize int) *Publisher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	p := &Publisher{
		log:   log,
		queue: make(chan Event, queueSize),
		subs:  make(map[string][]Handler),
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

// Subscribe регистрирует обработчик топика. Вызывается при сборке
// приложения, до начала публикаций.
func (p *Publisher) Subscribe(topic string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs[topic] = append(p.subs[topic], h)
}

// Publish ставит событие в очередь и сразу возвращается.
// После Close события отбрасываются, как при переполнении очереди.
func (p *Publisher) Publish(topic, eventType string, data any) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		metrics.EventsDropped.Inc()
		p.log.Warn("публикация после остановки, событие отброшено",
			zap.String("topic", topic), zap.String("type", eventType))
		return
	}
	ev := Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
	select {
	case p.queue <- ev:
		metrics.EventsPublished.WithLabelValues(topic).Inc()
	default:
		metrics.EventsDropped.Inc()
		p.log.Warn("очередь событий переполнена, событие отброшено",
			zap.String("topic", topic), zap.String("type", eventType))
	}
}

func (p *Publisher) loop() {
	defer p.wg.Done()
	for ev := range p.queue {
		p.deliver(ev)
	}
}

func (p *Publisher) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("паника в обработчике события",
				zap.String("topic", ev.Topic), zap.String("type", ev.Type), zap.Any("panic", r))
		}
	}()

	p.mu.RLock()
	handlers := p.subs[ev.Topic]
	p.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	p.log.Debug("событие доставлено",
		zap.String("id", ev.ID), zap.String("topic", ev.Topic),
		zap.String("type", ev.Type), zap.Int("handlers", len(handlers)))
}

// Close дожидается доставки уже поставленных в очередь событий.
// Гонка Publish/Close безопасна: очередь закрывается под тем же
// мьютексом, который Publish держит на чтение.
func (p *Publisher) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.queue)
		p.mu.Unlock()
	})
	p.wg.Wait()
}
