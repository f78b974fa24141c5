package notify

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/mailer"
	"github.com/Spok95/school-management-api/internal/models"
)

// Типы уведомлений.
const (
	TypeWelcome           = "WELCOME"
	TypeAssignmentDueSoon = "ASSIGNMENT_DUE_SOON"
	TypeAssignmentOverdue = "ASSIGNMENT_OVERDUE"
	TypeSubmissionGraded  = "SUBMISSION_GRADED"
	TypeAttendanceStats   = "ATTENDANCE_STATS"
	TypeMaintenance       = "MAINTENANCE"
)

// Notification — полезная нагрузка события notification-events.
type Notification struct {
	UserID          int64  `json:"userId"`
	Email           string `json:"email"`
	Subject         string `json:"subject"`
	Message         string `json:"message"`
	Type            string `json:"type"`
	RelatedEntityID int64  `json:"relatedEntityId,omitempty"`
}

// Service публикует уведомления в шину событий. Доставка при этом
// асинхронная: публикация никого не блокирует и не возвращает ошибок.
type Service struct {
	pub *events.Publisher
	log *zap.Logger
}

func NewService(pub *events.Publisher, log *zap.Logger) *Service {
	return &Service{pub: pub, log: log}
}

func (s *Service) send(n Notification) {
	s.pub.Publish(events.TopicNotificationEvents, "SEND_EMAIL", n)
}

func (s *Service) Welcome(u models.User) {
	s.send(Notification{
		UserID:  u.ID,
		Email:   u.Email,
		Subject: "Добро пожаловать!",
		Message: fmt.Sprintf("Здравствуйте, %s %s! Учётная запись создана.", u.FirstName, u.LastName),
		Type:    TypeWelcome,
	})
}

func (s *Service) AssignmentDueSoon(student models.Student, a models.Assignment) {
	s.send(Notification{
		UserID: student.ID,
		Email:  student.Email,
		Subject: "Скоро срок сдачи задания",
		Message: fmt.Sprintf("Задание «%s» нужно сдать до %s.",
			a.Title, a.DueDate.Format("02.01.2006 15:04")),
		Type:            TypeAssignmentDueSoon,
		RelatedEntityID: a.ID,
	})
}

func (s *Service) AssignmentOverdue(teacher models.Teacher, a models.Assignment, missing int) {
	s.send(Notification{
		UserID: teacher.ID,
		Email:  teacher.Email,
		Subject: "Срок сдачи задания истёк",
		Message: fmt.Sprintf("По заданию «%s» истёк срок сдачи, не сдали работу: %d.",
			a.Title, missing),
		Type:            TypeAssignmentOverdue,
		RelatedEntityID: a.ID,
	})
}

func (s *Service) SubmissionGraded(student models.Student, sub models.Submission) {
	grade := ""
	if sub.Grade != nil {
		grade = *sub.Grade
	}
	s.send(Notification{
		UserID:          student.ID,
		Email:           student.Email,
		Subject:         "Работа проверена",
		Message:         fmt.Sprintf("Ваша работа проверена, оценка: %s.", grade),
		Type:            TypeSubmissionGraded,
		RelatedEntityID: sub.ID,
	})
}

func (s *Service) DailyAttendanceStats(adminEmail string, stats models.DailyAttendanceStats) {
	s.send(Notification{
		Email:   adminEmail,
		Subject: "Посещаемость за " + stats.Date.Format("02.01.2006"),
		Message: fmt.Sprintf("Присутствовали: %d, отсутствовали: %d, опоздали: %d, всего записей: %d, посещаемость: %.1f%%.",
			stats.PresentCount, stats.AbsentCount, stats.LateCount, stats.TotalRecords, stats.Rate),
		Type: TypeAttendanceStats,
	})
}

func (s *Service) Maintenance(adminEmail, details string) {
	s.send(Notification{
		Email:   adminEmail,
		Subject: "Еженедельное обслуживание выполнено",
		Message: details,
		Type:    TypeMaintenance,
	})
}

// EmailConsumer подписывает отправку писем на notification-events.
// События с пустым адресом пропускаются с записью в лог.
func EmailConsumer(pub *events.Publisher, m mailer.Mailer, log *zap.Logger) {
	pub.Subscribe(events.TopicNotificationEvents, func(ev events.Event) {
		if ev.Type != "SEND_EMAIL" {
			return
		}
		n, err := decode(ev.Data)
		if err != nil {
			log.Warn("не удалось разобрать уведомление", zap.String("event_id", ev.ID), zap.Error(err))
			return
		}
		if n.Email == "" {
			log.Warn("уведомление без адреса", zap.String("event_id", ev.ID), zap.String("type", n.Type))
			return
		}
		m.Send(mailer.Message{
			ToEmail: n.Email,
			Subject: n.Subject,
			Body:    n.Message,
		})
	})
}

func decode(data any) (Notification, error) {
	if n, ok := data.(Notification); ok {
		return n, nil
	}
	// Событие могло прийти после сериализации, тогда Data — map.
	raw, err := json.Marshal(data)
	if err != nil {
		return Notification{}, err
	}
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return Notification{}, err
	}
	return n, nil
}
