package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/kafka"
)

var ErrUnknownEvent = errors.New("email: unknown booking event type")

// Sender turns booking events into messages for the guardian.
type Sender struct {
	mailer Mailer
	logger *zap.Logger
}

func NewSender(mailer Mailer, logger *zap.Logger) *Sender {
	return &Sender{mailer: mailer, logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if strings.TrimSpace(event.GuardianEmail) == "" {
		s.logger.Warn("booking event without guardian email", zap.String("booking_id", event.BookingID))
		return nil
	}

	msg, err := Compose(event)
	if err != nil {
		return err
	}

	id, err := s.mailer.Send(ctx, event.GuardianEmail, event.GuardianName, msg.Subject, msg.Text, msg.HTML)
	if err != nil {
		return fmt.Errorf("send %s email for booking %s: %w", event.Type, event.BookingID, err)
	}
	s.logger.Info("booking email sent",
		zap.String("type", event.Type),
		zap.String("booking_id", event.BookingID),
		zap.String("message_id", id),
	)
	return nil
}

// HandleMessage sends the email for one booking event. Undecodable or unknown events
// and delivery failures are logged and skipped so one bad event never stalls the topic.
func (s *Sender) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.DecodeBookingEvent(msg.Value)
	if err != nil {
		s.logger.Warn("skipping malformed booking event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}
	if err := s.Send(ctx, event); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Error("booking email failed", zap.String("booking_id", event.BookingID), zap.Error(err))
	}
	return nil
}

type Message struct {
	Subject string
	Text    string
	HTML    string
}

func Compose(event kafka.BookingEvent) (Message, error) {
	var subject, intro string
	switch event.Type {
	case kafka.EventBookingCreated:
		subject = "Tu reserva en Lumina está confirmada"
		intro = fmt.Sprintf("Hola %s, registramos la reserva para %s.", event.GuardianName, event.StudentName)
	case kafka.EventBookingCancelled:
		subject = "Tu reserva en Lumina fue cancelada"
		intro = fmt.Sprintf("Hola %s, la reserva para %s fue cancelada.", event.GuardianName, event.StudentName)
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}

	lines := []string{intro, ""}
	if event.TutorName != "" {
		lines = append(lines, "Tutor/a: "+event.TutorName)
	}
	lines = append(lines, "Modalidad: "+deliveryLabel(event.DeliveryMode))
	if event.Mode == domain.BookingModePackage {
		lines = append(lines, fmt.Sprintf("Paquete de %d horas", event.Hours))
	}
	for _, s := range event.Slots {
		lines = append(lines, fmt.Sprintf("- %s %s-%s", s.Date, s.Start, s.End))
	}
	if event.Amount != nil {
		lines = append(lines, "Total: "+formatCOP(*event.Amount))
	}

	text := strings.Join(lines, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(l))
		b.WriteString("</p>")
	}
	return Message{Subject: subject, Text: text, HTML: b.String()}, nil
}

func deliveryLabel(m domain.DeliveryMode) string {
	switch m {
	case domain.DeliveryInPerson:
		return "Presencial"
	case domain.DeliveryVirtual:
		return "Virtual"
	default:
		return string(m)
	}
}

// formatCOP renders 250000 as "$250.000".
func formatCOP(v int64) string {
	digits := fmt.Sprintf("%d", v)
	if v < 0 {
		digits = digits[1:]
	}
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i])
	}
	sign := ""
	if v < 0 {
		sign = "-"
	}
	return sign + "$" + string(out)
}
