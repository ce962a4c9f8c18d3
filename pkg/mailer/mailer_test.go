package mailer_test

import (
	"context"
	"testing"

	"hetave/pkg/mailer"

	"github.com/stretchr/testify/assert"
)

func TestNew_SelectsTransport(t *testing.T) {
	assert.IsType(t, &mailer.ResendMailer{}, mailer.New(mailer.Config{ResendAPIKey: "re_test", SMTPHost: "smtp.gmail.com"}))
	assert.IsType(t, &mailer.SMTPMailer{}, mailer.New(mailer.Config{SMTPHost: "smtp.gmail.com", SMTPPort: 587}))
	assert.IsType(t, mailer.LogMailer{}, mailer.New(mailer.Config{}))
}

func TestLogMailer_NeverFails(t *testing.T) {
	err := mailer.LogMailer{}.Send(context.Background(), mailer.Message{To: []string{"a@x.com"}, Subject: "hi"})
	assert.NoError(t, err)
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := mailer.NewSMTPMailer("127.0.0.1", 1, "", "", "from@x.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, mailer.Message{To: []string{"a@x.com"}}), context.Canceled)
}
