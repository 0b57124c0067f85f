package service

import (
	"context"
	"log/slog"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/internal/event"
	"github.com/FBK-Manuel/wearehfg/internal/gateway"
	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
)

// FormGateway is the backend surface of the community forms.
type FormGateway interface {
	Contact(ctx context.Context, form domain.ContactForm) gateway.Result[domain.SubmitResult]
	Newsletter(ctx context.Context, form domain.NewsletterForm) gateway.Result[domain.SubmitResult]
	PrayerRequest(ctx context.Context, form domain.PrayerRequestForm) gateway.Result[domain.SubmitResult]
	Testimony(ctx context.Context, form domain.TestimonyForm) gateway.Result[domain.SubmitResult]
	Evangelism(ctx context.Context, form domain.EvangelismForm) gateway.Result[domain.SubmitResult]
	Salvation(ctx context.Context, form domain.SalvationForm) gateway.Result[domain.SubmitResult]
}

// Form names used in logs and events.
const (
	FormContact       = "contact"
	FormNewsletter    = "newsletter"
	FormPrayerRequest = "prayer_request"
	FormTestimony     = "testimony"
	FormEvangelism    = "evangelism"
	FormSalvation     = "salvation"
)

// FormService forwards validated community forms to the backend. Forms are
// validated by the caller; nothing here re-checks them.
type FormService struct {
	gw       FormGateway
	producer *event.Producer
	logger   *slog.Logger
}

func NewFormService(gw FormGateway, producer *event.Producer, logger *slog.Logger) *FormService {
	return &FormService{gw: gw, producer: producer, logger: logger}
}

func (s *FormService) Contact(ctx context.Context, sessionID string, form domain.ContactForm) (domain.SubmitResult, error) {
	return s.outcome(ctx, sessionID, FormContact, s.gw.Contact(ctx, form))
}

func (s *FormService) Newsletter(ctx context.Context, sessionID string, form domain.NewsletterForm) (domain.SubmitResult, error) {
	return s.outcome(ctx, sessionID, FormNewsletter, s.gw.Newsletter(ctx, form))
}

func (s *FormService) PrayerRequest(ctx context.Context, sessionID string, form domain.PrayerRequestForm) (domain.SubmitResult, error) {
	return s.outcome(ctx, sessionID, FormPrayerRequest, s.gw.PrayerRequest(ctx, form))
}

func (s *FormService) Testimony(ctx context.Context, sessionID string, form domain.TestimonyForm) (domain.SubmitResult, error) {
	return s.outcome(ctx, sessionID, FormTestimony, s.gw.Testimony(ctx, form))
}

func (s *FormService) Evangelism(ctx context.Context, sessionID string, form domain.EvangelismForm) (domain.SubmitResult, error) {
	return s.outcome(ctx, sessionID, FormEvangelism, s.gw.Evangelism(ctx, form))
}

func (s *FormService) Salvation(ctx context.Context, sessionID string, form domain.SalvationForm) (domain.SubmitResult, error) {
	return s.outcome(ctx, sessionID, FormSalvation, s.gw.Salvation(ctx, form))
}

func (s *FormService) outcome(ctx context.Context, sessionID, form string, res gateway.Result[domain.SubmitResult]) (domain.SubmitResult, error) {
	if err := s.producer.PublishFormSubmitted(ctx, sessionID, form, res.Kind().String()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish form.submitted event",
			slog.String("form", form),
			slog.String("error", err.Error()),
		)
	}
	return submission(ctx, s.logger, form, res)
}

// submission maps a backend outcome to what the storefront shows: the
// backend's own refusal text (422) or a generic upstream failure (502).
func submission(ctx context.Context, logger *slog.Logger, form string, res gateway.Result[domain.SubmitResult]) (domain.SubmitResult, error) {
	switch res.Kind() {
	case gateway.KindOK:
		logger.InfoContext(ctx, "form submitted", slog.String("form", form))
		return res.Value(), nil
	case gateway.KindAppError:
		logger.InfoContext(ctx, "form rejected by backend",
			slog.String("form", form),
			slog.String("message", res.Message()),
		)
		return domain.SubmitResult{}, apperrors.SubmissionRejected(res.Message())
	default:
		logger.WarnContext(ctx, "form submission failed",
			slog.String("form", form),
			slog.String("error", res.Err().Error()),
		)
		return domain.SubmitResult{}, apperrors.Upstream(res.Message(), res.Err())
	}
}
