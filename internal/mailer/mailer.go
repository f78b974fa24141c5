package mailer

import (
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Message — письмо одному получателю.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// Mailer отправляет письма. Реализации не возвращают ошибок наружу:
// рассылка идёт из фоновых обработчиков, которым некому их вернуть.
type Mailer interface {
	Send(msg Message)
}

type sendgridMailer struct {
	key  string
	from *sgmail.Email
	log  *zap.Logger
}

// NewSendgrid создаёт почтовый сервис поверх SendGrid API.
func NewSendgrid(key, appName, fromEmail string, log *zap.Logger) Mailer {
	return &sendgridMailer{
		key:  key,
		from: sgmail.NewEmail(appName, fromEmail),
		log:  log,
	}
}

func (m *sendgridMailer) Send(msg Message) {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Body))

	req := sendgrid.GetRequest(m.key, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(v3)

	res, err := sendgrid.API(req)
	if err != nil {
		m.log.Error("отправка письма не удалась", zap.String("to", msg.ToEmail), zap.Error(err))
		return
	}
	if res.StatusCode >= http.StatusBadRequest {
		m.log.Error("sendgrid отклонил письмо",
			zap.String("to", msg.ToEmail), zap.Int("status", res.StatusCode))
	}
}

type consoleMailer struct {
	log *zap.Logger
}

// NewConsole пишет письма в лог вместо отправки. Для локальной разработки
// и тестов, когда ключ SendGrid не задан.
func NewConsole(log *zap.Logger) Mailer {
	return &consoleMailer{log: log}
}

func (m *consoleMailer) Send(msg Message) {
	m.log.Info("письмо (консольный режим)",
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
}
