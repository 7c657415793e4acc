package notifications

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"kudos/internal/domain/feedback"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Queue runs work in the background.
type Queue interface {
	Enqueue(jobType string, run func(context.Context) error)
}

type Service struct {
	Mailer      Mailer
	Queue       Queue
	DefaultFrom string
	AppBaseURL  string
}

func New(mailer Mailer, queue Queue, from, appBaseURL string) *Service {
	if from == "" {
		from = "kudos@example.com"
	}
	return &Service{Mailer: mailer, Queue: queue, DefaultFrom: from, AppBaseURL: strings.TrimRight(appBaseURL, "/")}
}

// FeedbackReceived e-mails the employee about a new feedback event.
func (s *Service) FeedbackReceived(ctx context.Context, recipient, grantor feedback.Contact, ev feedback.Event) {
	if recipient.Email == "" {
		return
	}
	label := "Punct roșu"
	if ev.PointType == feedback.PointBlack {
		label = "Punct negru"
	}
	body, err := render(feedbackTemplate, feedbackView{
		EmployeeName: recipient.Name,
		GrantorName:  grantor.Name,
		PointLabel:   label,
		Category:     ev.Category,
		Comment:      ev.Comment,
		AppURL:       s.AppBaseURL,
	})
	if err != nil {
		slog.Warn("feedback email render failed", "err", err)
		return
	}
	s.dispatch(ctx, TypeFeedbackReceived, recipient.Email, subjectFeedbackReceived, body)
}

// PasswordReset e-mails a reset link carrying token.
func (s *Service) PasswordReset(ctx context.Context, email, name, token string) {
	link := s.AppBaseURL + "/reset-password?token=" + url.QueryEscape(token)
	body, err := render(resetTemplate, resetView{Name: name, Link: link})
	if err != nil {
		slog.Warn("reset email render failed", "err", err)
		return
	}
	s.dispatch(ctx, TypePasswordReset, email, subjectPasswordReset, body)
}

func (s *Service) dispatch(ctx context.Context, ntype, to, subject, body string) {
	if s.Mailer == nil {
		return
	}
	send := func(ctx context.Context) error {
		return s.Mailer.Send(ctx, s.DefaultFrom, to, subject, body)
	}
	if s.Queue == nil {
		if err := send(ctx); err != nil {
			slog.Warn("notification email send failed", "type", ntype, "err", err)
		}
		return
	}
	s.Queue.Enqueue(ntype, send)
}
