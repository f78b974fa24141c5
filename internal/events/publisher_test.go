package events

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPublisher_DeliversToSubscribers(t *testing.T) {
	p := NewPublisher(zap.NewNop(), 16)

	var mu sync.Mutex
	var got []Event
	p.Subscribe(TopicUserEvents, func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	p.Publish(TopicUserEvents, "STUDENT_CREATED", map[string]any{"id": 1})
	p.Publish(TopicCourseEvents, "COURSE_CREATED", nil) // чужой топик
	p.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("ожидали одно событие, получили %d", len(got))
	}
	if got[0].Type != "STUDENT_CREATED" || got[0].ID == "" {
		t.Fatalf("неожиданное событие: %+v", got[0])
	}
}

func TestPublisher_PublishNeverBlocks(t *testing.T) {
	p := NewPublisher(zap.NewNop(), 1)

	block := make(chan struct{})
	p.Subscribe(TopicUserEvents, func(Event) { <-block })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			p.Publish(TopicUserEvents, "X", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish заблокировался на переполненной очереди")
	}
	close(block)
	p.Close()
}

func TestPublisher_HandlerPanicDoesNotKillLoop(t *testing.T) {
	p := NewPublisher(zap.NewNop(), 16)

	var delivered atomic.Int32
	p.Subscribe(TopicSubmissionEvents, func(ev Event) {
		if ev.Type == "BOOM" {
			panic("boom")
		}
		delivered.Add(1)
	})

	p.Publish(TopicSubmissionEvents, "BOOM", nil)
	p.Publish(TopicSubmissionEvents, "OK", nil)
	p.Close()

	if delivered.Load() != 1 {
		t.Fatalf("после паники цикл должен жить, доставлено %d", delivered.Load())
	}
}

func TestPublisher_PublishAfterCloseDropsEvent(t *testing.T) {
	p := NewPublisher(zap.NewNop(), 16)

	var delivered atomic.Int32
	p.Subscribe(TopicUserEvents, func(Event) { delivered.Add(1) })
	p.Close()

	// не должно паниковать отправкой в закрытый канал
	p.Publish(TopicUserEvents, "STUDENT_CREATED", nil)
	p.Close() // повторный Close тоже безопасен

	if delivered.Load() != 0 {
		t.Fatalf("после Close событие должно отбрасываться, доставлено %d", delivered.Load())
	}
}

func TestPublisher_CloseDrainsQueue(t *testing.T) {
	p := NewPublisher(zap.NewNop(), 64)

	var delivered atomic.Int32
	p.Subscribe(TopicAttendanceEvents, func(Event) { delivered.Add(1) })

	for i := 0; i < 50; i++ {
		p.Publish(TopicAttendanceEvents, "ATTENDANCE_MARKED", i)
	}
	p.Close()

	if delivered.Load() != 50 {
		t.Fatalf("Close обязан дождаться очереди, доставлено %d из 50", delivered.Load())
	}
}
