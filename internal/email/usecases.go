package email

// CodeMailer is what the HTTP layer depends on for delivering codes.
type CodeMailer interface {
	Send(email string, code int) error
}

type sendVerificationCode struct {
	*Sender
}

// NewSendVerificationCodeUseCase wraps the sender with a single retry;
// transient SMTP hiccups are common enough that one immediate retry saves
// a visible failure without hiding a real outage.
func NewSendVerificationCodeUseCase(sender *Sender) CodeMailer {
	return &sendVerificationCode{sender}
}

func (u *sendVerificationCode) Send(email string, code int) error {
	err := u.SendVerificationCode(email, code)
	if err != nil {
		if retryErr := u.SendVerificationCode(email, code); retryErr == nil {
			return nil
		}
	}
	return err
}
