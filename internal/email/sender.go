package email

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"account/config"
)

var verifyTemplate = template.Must(template.New("verify_email").Parse(`
<p>Hello,</p>
<p>Your email verification code is:</p>
<h2>{{.Code}}</h2>
<p>The code expires in 10 minutes. If you did not request it, you can ignore this message.</p>
`))

// Sender delivers account mail over SMTP.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(cfg config.SMTP) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendVerificationCode mails the 6-digit code to the given address.
func (s *Sender) SendVerificationCode(to string, code int) error {
	body := new(bytes.Buffer)
	if err := verifyTemplate.Execute(body, map[string]int{"Code": code}); err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your email verification code: %d", code))
	m.SetBody("text/html", body.String())

	return s.dialer.DialAndSend(m)
}
