package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"portfolio-email-service/internal/domain"
	"portfolio-email-service/pkg/audit"
	"portfolio-email-service/pkg/email"
	"portfolio-email-service/pkg/metrics"
	"portfolio-email-service/pkg/validation"
)

// ContactDeps are the collaborators of the contact usecase. Sender and Composer are required.
type ContactDeps struct {
	Sender   email.Sender
	Composer *email.Composer
	Validate *validator.Validate
	Audit    *audit.Logger
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

type contactUsecase struct {
	sender   email.Sender
	composer *email.Composer
	validate *validator.Validate
	audit    *audit.Logger
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// outbound is one step of the delivery plan.
type outbound struct {
	stage domain.DeliveryStage
	msg   email.Message
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(deps ContactDeps) domain.ContactUsecase {
	uc := &contactUsecase{
		sender:   deps.Sender,
		composer: deps.Composer,
		validate: deps.Validate,
		audit:    deps.Audit,
		metrics:  deps.Metrics,
		log:      deps.Log,
	}
	if uc.validate == nil {
		uc.validate = validation.New()
	}
	if uc.audit == nil {
		uc.audit = audit.Nop()
	}
	if uc.log == nil {
		uc.log = slog.Default()
	}
	return uc
}

// SendContactMessage validates the contact request and sends both emails in order.
//
// Delivery is not transactional: if the visitor acknowledgement fails after the admin
// notification went out, the returned *domain.DeliveryError lists the admin stage in Sent
// and nothing is recalled.
func (uc *contactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactRequest) error {
	if req == nil {
		req = &domain.ContactRequest{}
	}
	requestID := domain.RequestIDFrom(ctx)

	if err := uc.validate.Struct(req); err != nil {
		msg := validation.FirstViolation(err)
		uc.audit.ContactRejected(ctx, req.Email, requestID, msg)
		uc.metrics.ObserveSubmission(metrics.OutcomeRejected)
		return &domain.ValidationError{Message: msg}
	}

	data := email.ContactEmailData{
		SenderName:  strings.TrimSpace(req.Name),
		SenderEmail: strings.TrimSpace(req.Email),
		Subject:     strings.TrimSpace(req.Subject),
		Message:     strings.TrimSpace(req.Message),
	}

	plan, err := uc.plan(data)
	if err != nil {
		uc.metrics.ObserveSubmission(metrics.OutcomeFailed)
		return err
	}

	// Once the first send starts, the request runs to completion even if the caller goes away.
	sendCtx := context.WithoutCancel(ctx)

	sent := make([]domain.DeliveryStage, 0, len(plan))
	for _, step := range plan {
		if err := uc.send(sendCtx, step.stage, step.msg); err != nil {
			derr := &domain.DeliveryError{Stage: step.stage, Sent: sent, Err: err}

			uc.audit.ContactDeliveryFailed(ctx, data.SenderEmail, requestID, string(step.stage), derr.Partial(), err)
			if derr.Partial() {
				uc.metrics.ObserveSubmission(metrics.OutcomePartial)
				uc.log.Error("Contact delivery partially failed; earlier emails were already sent",
					"stage", step.stage, "sent", sent, "request_id", requestID, "error", err)
			} else {
				uc.metrics.ObserveSubmission(metrics.OutcomeFailed)
				uc.log.Error("Contact delivery failed", "stage", step.stage, "request_id", requestID, "error", err)
			}
			return derr
		}

		sent = append(sent, step.stage)
		uc.audit.ContactEmailSent(ctx, data.SenderEmail, requestID, string(step.stage))
	}

	uc.metrics.ObserveSubmission(metrics.OutcomeDelivered)
	uc.audit.ContactDelivered(ctx, data.SenderEmail, requestID)
	return nil
}

// SendTestEmail sends one self-test message to the configured owner address.
func (uc *contactUsecase) SendTestEmail(ctx context.Context) error {
	requestID := domain.RequestIDFrom(ctx)

	msg, err := uc.composer.TestMessage()
	if err != nil {
		return err
	}

	if err := uc.send(context.WithoutCancel(ctx), domain.StageTest, msg); err != nil {
		uc.audit.TestEmail(ctx, requestID, err)
		uc.log.Error("Test email failed", "request_id", requestID, "error", err)
		return &domain.DeliveryError{Stage: domain.StageTest, Err: err}
	}

	uc.audit.TestEmail(ctx, requestID, nil)
	return nil
}

// plan renders every message up front so a template failure can never leave a single email sent.
func (uc *contactUsecase) plan(data email.ContactEmailData) ([]outbound, error) {
	plan := make([]outbound, 0, len(domain.ContactStages))
	for _, stage := range domain.ContactStages {
		var (
			msg email.Message
			err error
		)
		switch stage {
		case domain.StageAdminNotification:
			msg, err = uc.composer.AdminNotification(data)
		case domain.StageVisitorAcknowledgement:
			msg, err = uc.composer.VisitorAcknowledgement(data)
		default:
			err = fmt.Errorf("no message for stage %q", stage)
		}
		if err != nil {
			return nil, err
		}
		plan = append(plan, outbound{stage: stage, msg: msg})
	}
	return plan, nil
}

func (uc *contactUsecase) send(ctx context.Context, stage domain.DeliveryStage, msg email.Message) error {
	start := time.Now()
	err := uc.sender.Send(ctx, msg)
	uc.metrics.ObserveSend(string(stage), time.Since(start), err)
	return err
}
