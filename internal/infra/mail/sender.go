package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"gopkg.in/gomail.v2"
)

var newLeadTemplate = template.Must(template.New("new_lead").Parse(`<h2>Novo lead: {{.Name}}</h2>
<ul>
  <li>Email: {{.Email}}</li>
  {{if .WhatsApp}}<li>WhatsApp: {{.WhatsApp}}</li>{{end}}
  {{if .Role}}<li>Cargo: {{.Role}}</li>{{end}}
  {{if .UTMSource}}<li>Origem: {{.UTMSource}}{{if .UTMMedium}} / {{.UTMMedium}}{{end}}{{if .UTMCampaign}} ({{.UTMCampaign}}){{end}}</li>{{end}}
  <li>Capturado em: {{.CapturedAt}}</li>
</ul>`))

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// NotifyNewLead manda o aviso de lead novo para a caixa do comercial.
func (s *EmailSender) NotifyNewLead(ctx context.Context, event queue.LeadCapturedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := NewLeadEmailData{
		Name:        event.Name,
		Email:       event.Email,
		WhatsApp:    event.WhatsApp,
		Role:        event.Role,
		UTMSource:   event.UTMSource,
		UTMMedium:   event.UTMMedium,
		UTMCampaign: event.UTMCampaign,
		CapturedAt:  event.CapturedAt.In(time.UTC).Format("02/01/2006 15:04 MST"),
	}

	var body bytes.Buffer
	if err := newLeadTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Reply-To", event.Email)
	m.SetHeader("Subject", fmt.Sprintf("Novo lead: %s 🚀", event.Name))
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
