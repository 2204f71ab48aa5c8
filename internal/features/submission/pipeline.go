package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vowops/internal/common/models"
	"vowops/internal/email"
	"vowops/internal/features/form"
	"vowops/internal/features/lead"
	"vowops/internal/features/rule"
	"vowops/internal/features/template"
	"vowops/internal/resolver"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Events receives delivery notifications for streaming to dashboard clients.
type Events interface {
	Publish(event interface{})
}

// Sender is the outbound side of the pipeline, implemented by the email
// dispatcher.
type Sender interface {
	Send(ctx context.Context, msg *email.Email) email.SendResult
	Reject(ctx context.Context, msg *email.Email, cause error) email.SendResult
}

// DeliveryEvent is published once per matched rule after dispatch settles.
type DeliveryEvent struct {
	Type          string    `json:"type"`
	SubmissionID  string    `json:"submissionId"`
	FormID        string    `json:"formId"`
	RuleID        string    `json:"ruleId"`
	RuleName      string    `json:"ruleName"`
	Recipient     string    `json:"recipient,omitempty"`
	Success       bool      `json:"success"`
	Transport     string    `json:"transport,omitempty"`
	Attempts      int       `json:"attempts"`
	Error         string    `json:"error,omitempty"`
	CorrelationID string    `json:"correlationId"`
	At            time.Time `json:"at"`
}

var (
	ErrFormNotFound = errors.New("form not found")
	ErrFormInactive = errors.New("form is not accepting submissions")
)

// Pipeline accepts submissions and drives the rule engine over them. Accepting
// a submission is synchronous and cheap; matching and delivery run in the
// background so the submitter never waits on email infrastructure.
type Pipeline struct {
	repo       SubmissionRepository
	forms      form.FormRepository
	leads      lead.LeadService
	templates  template.TemplateRepository
	processor  *rule.Processor
	resolver   *resolver.Resolver
	dispatcher Sender
	events     Events
	log        *zap.Logger
}

func NewPipeline(
	repo SubmissionRepository,
	forms form.FormRepository,
	leads lead.LeadService,
	templates template.TemplateRepository,
	processor *rule.Processor,
	res *resolver.Resolver,
	dispatcher Sender,
	events Events,
	log *zap.Logger,
) *Pipeline {
	return &Pipeline{
		repo:       repo,
		forms:      forms,
		leads:      leads,
		templates:  templates,
		processor:  processor,
		resolver:   res,
		dispatcher: dispatcher,
		events:     events,
		log:        log,
	}
}

// Accept persists the submission and kicks off rule processing. It returns as
// soon as the record is durable; delivery outcomes surface through the event
// stream and the email log, never as an error here.
func (p *Pipeline) Accept(ctx context.Context, formID string, payload map[string]interface{}) (*Submission, error) {
	f, err := p.forms.GetByID(ctx, formID)
	if err != nil || f == nil {
		return nil, ErrFormNotFound
	}
	if !f.IsActive {
		return nil, ErrFormInactive
	}

	if payload == nil {
		payload = map[string]interface{}{}
	}
	attachSideStructures(f, payload)

	mapped := models.MappedFieldsOf(payload)
	ld, err := p.leads.Upsert(ctx, formID,
		mappedString(mapped, "name"),
		mappedString(mapped, "email"),
		mappedString(mapped, "phone"))
	if err != nil {
		return nil, fmt.Errorf("failed to link lead: %w", err)
	}

	now := time.Now()
	leadID := ld.ID.Hex()
	payload["leadId"] = leadID
	token := newTrackingToken(leadID, now)
	payload["trackingToken"] = token

	sub := &Submission{
		FormID:        formID,
		LeadID:        leadID,
		TrackingToken: token,
		Data:          payload,
	}
	if err := p.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	go p.process(sub)

	return sub, nil
}

func (p *Pipeline) process(sub *Submission) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("submission processing panicked",
				zap.String("submissionId", sub.ID.Hex()),
				zap.Any("panic", r))
		}
	}()

	ctx := context.Background()
	correlationID := uuid.NewString()
	log := p.log.With(
		zap.String("correlationId", correlationID),
		zap.String("formId", sub.FormID),
		zap.String("submissionId", sub.ID.Hex()))

	matched := p.processor.ProcessForm(ctx, correlationID, sub.FormID, sub.Data)
	log.Info("rule processing finished", zap.Int("matched", len(matched)))

	for _, r := range matched {
		p.deliver(ctx, log, sub, r, correlationID)
	}
}

func (p *Pipeline) deliver(ctx context.Context, log *zap.Logger, sub *Submission, r rule.EmailRule, correlationID string) {
	msg := &email.Email{
		RuleID:        r.ID.Hex(),
		SubmissionID:  sub.ID.Hex(),
		CorrelationID: correlationID,
	}

	recipient, err := p.recipient(ctx, sub, r)
	if err != nil {
		log.Error("skipping delivery", zap.String("ruleId", r.ID.Hex()), zap.Error(err))
		result := p.dispatcher.Reject(ctx, msg, err)
		p.publish(sub, r, "", correlationID, result)
		return
	}
	msg.To = []string{recipient}

	tpl, err := p.templates.GetByID(ctx, r.TemplateID.Hex())
	if err != nil || tpl == nil {
		log.Error("template missing for rule", zap.String("ruleId", r.ID.Hex()))
		result := p.dispatcher.Reject(ctx, msg, errors.New("template not found"))
		p.publish(sub, r, recipient, correlationID, result)
		return
	}

	vars := renderVars(sub.Data)
	for k, v := range template.Enrich(ctx, tpl.EnrichScript, sub.Data, log) {
		vars[k] = v
	}

	msg.Subject = template.Render(tpl.Subject, sub.Data, vars)
	msg.HtmlBody = template.Render(tpl.Body, sub.Data, vars)
	if tpl.TextBody != "" {
		msg.TextBody = template.Render(tpl.TextBody, sub.Data, vars)
	}

	// Rule-level CC/BCC override the template's when set.
	msg.Cc = tpl.CcEmails
	if len(r.CcEmails) > 0 {
		msg.Cc = r.CcEmails
	}
	msg.Bcc = tpl.BccEmails
	if len(r.BccEmails) > 0 {
		msg.Bcc = r.BccEmails
	}

	result := p.dispatcher.Send(ctx, msg)
	p.publish(sub, r, recipient, correlationID, result)
}

// recipient resolves who the rule's email goes to: an explicit static address
// wins, then a field lookup against the submission.
func (p *Pipeline) recipient(ctx context.Context, sub *Submission, r rule.EmailRule) (string, error) {
	if r.RecipientType == rule.RecipientStatic && r.RecipientEmail != "" {
		return r.RecipientEmail, nil
	}

	if r.RecipientField != "" {
		if v, ok := p.resolver.Resolve(ctx, sub.FormID, r.RecipientField, sub.Data); ok {
			if s := stringify(v); s != "" {
				return s, nil
			}
		}
	}

	return "", errors.New("no recipient email found")
}

func (p *Pipeline) publish(sub *Submission, r rule.EmailRule, recipient, correlationID string, result email.SendResult) {
	if p.events == nil {
		return
	}
	p.events.Publish(DeliveryEvent{
		Type:          "email.delivery",
		SubmissionID:  sub.ID.Hex(),
		FormID:        sub.FormID,
		RuleID:        r.ID.Hex(),
		RuleName:      r.Name,
		Recipient:     recipient,
		Success:       result.Success,
		Transport:     result.Transport,
		Attempts:      result.Attempts,
		Error:         result.Error,
		CorrelationID: correlationID,
		At:            time.Now(),
	})
}

// renderVars flattens the mapped-field side-structure into the string map the
// renderer consumes.
func renderVars(data map[string]interface{}) map[string]string {
	out := make(map[string]string)
	for key, mf := range models.MappedFieldsOf(data) {
		out[key] = stringify(mf.Value)
	}
	if v, ok := data["leadId"].(string); ok {
		out["leadId"] = v
	}
	if v, ok := data["trackingToken"].(string); ok {
		out["trackingToken"] = v
	}
	return out
}

func mappedString(mapped map[string]models.MappedField, key string) string {
	if mf, ok := mapped[key]; ok {
		return stringify(mf.Value)
	}
	return ""
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
