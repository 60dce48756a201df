package services

import (
	"context"
	"fmt"
	"log"

	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
)

// MessageService handles the public contact form and its inbox.
type MessageService struct {
	MessageRepo *repositories.MessageRepository
	Mail        MailSender
	NotifyAddr  string
}

// CreateMessage stores an inbound message and notifies the agency
// mailbox. A failed notification is logged, the message stays stored.
func (s *MessageService) CreateMessage(ctx context.Context, in models.Message) (models.Message, error) {
	required := []struct {
		field, value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"phone", in.Phone},
		{"subject", in.Subject},
		{"message", in.Message},
	}
	for _, f := range required {
		if f.value == "" {
			return models.Message{}, &models.ValidationError{Field: f.field, Message: models.MsgFieldRequired}
		}
	}
	if !emailRegexp.MatchString(in.Email) {
		return models.Message{}, &models.ValidationError{Field: "email", Message: msgEmailInvalid}
	}
	if !phoneRegexp.MatchString(in.Phone) {
		return models.Message{}, &models.ValidationError{Field: "phone", Message: msgPhoneInvalid}
	}

	msg, err := s.MessageRepo.CreateMessage(ctx, in)
	if err != nil {
		return models.Message{}, err
	}

	body := fmt.Sprintf("Mesaj nou de la %s (%s, %s):\n\n%s", msg.Name, msg.Email, msg.Phone, msg.Message)
	if err := s.Mail.Send("Mesaj nou: "+msg.Subject, body, []string{s.NotifyAddr}); err != nil {
		log.Printf("[WARN] message %d stored but notification failed: %v", msg.ID, err)
	}
	return msg, nil
}

func (s *MessageService) GetMessageByID(ctx context.Context, id int) (models.Message, error) {
	return s.MessageRepo.GetMessageByID(ctx, id)
}

func (s *MessageService) GetMessages(ctx context.Context) ([]models.Message, error) {
	return s.MessageRepo.GetMessages(ctx)
}

func (s *MessageService) DeleteMessage(ctx context.Context, id int) error {
	return s.MessageRepo.DeleteMessage(ctx, id)
}
