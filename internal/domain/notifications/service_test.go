package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kudos/internal/domain/feedback"
)

type sentMail struct {
	from, to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, from, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{from, to, subject, body})
	return m.err
}

type inlineQueue struct {
	jobs []string
	errs []error
}

func (q *inlineQueue) Enqueue(jobType string, run func(context.Context) error) {
	q.jobs = append(q.jobs, jobType)
	q.errs = append(q.errs, run(context.Background()))
}

func TestFeedbackReceivedQueuesEmail(t *testing.T) {
	mailer := &fakeMailer{}
	queue := &inlineQueue{}
	svc := New(mailer, queue, "kudos@example.com", "https://kudos.example.com/")

	svc.FeedbackReceived(context.Background(),
		feedback.Contact{Name: "Ana", Email: "ana@example.com"},
		feedback.Contact{Name: "Mihai"},
		feedback.Event{PointType: feedback.PointBlack, Category: "Comunicare", Comment: "<b>întârziere</b>"},
	)

	if len(queue.jobs) != 1 || queue.jobs[0] != TypeFeedbackReceived {
		t.Fatalf("expected one queued feedback job, got %v", queue.jobs)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.to != "ana@example.com" || mail.from != "kudos@example.com" || mail.subject != subjectFeedbackReceived {
		t.Fatalf("unexpected envelope %+v", mail)
	}
	for _, want := range []string{"Ana", "Mihai", "Punct negru", "Comunicare", "https://kudos.example.com"} {
		if !strings.Contains(mail.body, want) {
			t.Fatalf("expected body to contain %q:\n%s", want, mail.body)
		}
	}
	if strings.Contains(mail.body, "<b>întârziere</b>") {
		t.Fatal("comment must be escaped")
	}
}

func TestFeedbackReceivedSkipsMissingAddress(t *testing.T) {
	mailer := &fakeMailer{}
	svc := New(mailer, nil, "", "")
	svc.FeedbackReceived(context.Background(), feedback.Contact{Name: "Ana"}, feedback.Contact{}, feedback.Event{PointType: feedback.PointRed})
	if len(mailer.sent) != 0 {
		t.Fatal("expected no email without address")
	}
}

func TestPasswordResetSendsInlineWithoutQueue(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := New(mailer, nil, "", "https://kudos.example.com")

	svc.PasswordReset(context.Background(), "ana@example.com", "Ana", "a b")

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].body, "https://kudos.example.com/reset-password?token=a+b") {
		t.Fatalf("expected escaped reset link, got:\n%s", mailer.sent[0].body)
	}
}
