package mail

import "gopkg.in/gomail.v2"

type NewLeadEmailData struct {
	Name        string
	Email       string
	WhatsApp    string
	Role        string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	CapturedAt  string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	To     string
	dialer dialer
}
