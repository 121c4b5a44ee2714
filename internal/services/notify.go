package services

import (
	"context"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/poofware/property-service/internal/utils"
)

// SMSSender hands a message off to the SMS transport. Delivery beyond the
// hand-off is the transport's problem, not ours.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender hands a message off to the email transport.
type EmailSender interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, plainText, htmlBody string) error
}

/* ---------- Twilio ---------- */

type twilioSender struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewTwilioSender(client *twilio.RestClient, fromPhone string) SMSSender {
	return &twilioSender{client: client, fromPhone: fromPhone}
}

func (s *twilioSender) SendSMS(_ context.Context, to, body string) error {
	if s.client == nil {
		utils.Logger.Warnf("Twilio client is nil, skipping SMS to %s", to)
		return nil
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.fromPhone)
	params.SetBody(body)
	_, err := s.client.Api.CreateMessage(params)
	return err
}

/* ---------- SendGrid ---------- */

type sendgridSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	sandbox   bool
}

func NewSendGridSender(client *sendgrid.Client, fromName, fromEmail string, sandbox bool) EmailSender {
	return &sendgridSender{client: client, fromName: fromName, fromEmail: fromEmail, sandbox: sandbox}
}

func (s *sendgridSender) SendEmail(_ context.Context, toName, toEmail, subject, plainText, htmlBody string) error {
	if s.client == nil {
		utils.Logger.Warnf("SendGrid client is nil, skipping email to %s", toEmail)
		return nil
	}
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plainText, htmlBody)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	_, err := s.client.Send(msg)
	return err
}
