package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vowops/internal/config"
	"vowops/internal/email"
	"vowops/internal/features/form"
	"vowops/internal/features/lead"
	"vowops/internal/features/rule"
	"vowops/internal/features/template"
	"vowops/internal/resolver"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeSubRepo struct {
	mu   sync.Mutex
	subs []*Submission
}

func (f *fakeSubRepo) Create(ctx context.Context, sub *Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt = time.Now()
	f.subs = append(f.subs, sub)
	return nil
}
func (f *fakeSubRepo) GetByID(ctx context.Context, id string) (*Submission, error) { return nil, nil }
func (f *fakeSubRepo) ListByForm(ctx context.Context, formID string) ([]Submission, error) {
	return nil, nil
}

type fakeFormRepo struct {
	form *form.Form
}

func (f *fakeFormRepo) Create(ctx context.Context, fm *form.Form) error { return nil }
func (f *fakeFormRepo) GetByID(ctx context.Context, id string) (*form.Form, error) {
	if f.form == nil {
		return nil, errors.New("not found")
	}
	return f.form, nil
}
func (f *fakeFormRepo) List(ctx context.Context) ([]form.Form, error)   { return nil, nil }
func (f *fakeFormRepo) Update(ctx context.Context, fm *form.Form) error { return nil }
func (f *fakeFormRepo) Delete(ctx context.Context, id string) error     { return nil }

type fakeLeadService struct{}

func (f *fakeLeadService) Upsert(ctx context.Context, formID, name, email, phone string) (*lead.Lead, error) {
	return &lead.Lead{ID: primitive.NewObjectID(), FormID: formID, Name: name, Email: email}, nil
}
func (f *fakeLeadService) GetLead(ctx context.Context, id string) (*lead.Lead, error) {
	return nil, nil
}
func (f *fakeLeadService) ListLeads(ctx context.Context, formID string) ([]lead.Lead, error) {
	return nil, nil
}
func (f *fakeLeadService) UpdateStatus(ctx context.Context, id string, status lead.LeadStatus) error {
	return nil
}
func (f *fakeLeadService) ExportXLSX(ctx context.Context, formID string) ([]byte, error) {
	return nil, nil
}

type fakeTemplateRepo struct {
	tpl *template.EmailTemplate
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t *template.EmailTemplate) error { return nil }
func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*template.EmailTemplate, error) {
	if f.tpl == nil {
		return nil, errors.New("not found")
	}
	return f.tpl, nil
}
func (f *fakeTemplateRepo) List(ctx context.Context) ([]template.EmailTemplate, error) {
	return nil, nil
}
func (f *fakeTemplateRepo) Update(ctx context.Context, t *template.EmailTemplate) error { return nil }
func (f *fakeTemplateRepo) Delete(ctx context.Context, id string) error                 { return nil }

type fakeSender struct {
	mu       sync.Mutex
	sent     []*email.Email
	rejected []error
}

func (f *fakeSender) Send(ctx context.Context, msg *email.Email) email.SendResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return email.SendResult{Success: true, Transport: "smtp", Attempts: 1}
}

func (f *fakeSender) Reject(ctx context.Context, msg *email.Email, cause error) email.SendResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, cause)
	return email.SendResult{Error: cause.Error()}
}

type fakeEvents struct {
	mu     sync.Mutex
	events []DeliveryEvent
}

func (f *fakeEvents) Publish(event interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := event.(DeliveryEvent); ok {
		f.events = append(f.events, e)
	}
}

type emptyRuleRepo struct{}

func (emptyRuleRepo) Create(ctx context.Context, r *rule.EmailRule) error          { return nil }
func (emptyRuleRepo) GetByID(ctx context.Context, id string) (*rule.EmailRule, error) {
	return nil, nil
}
func (emptyRuleRepo) GetActiveByForm(ctx context.Context, formID string) ([]rule.EmailRule, error) {
	return nil, nil
}
func (emptyRuleRepo) List(ctx context.Context, formID string) ([]rule.EmailRule, error) {
	return nil, nil
}
func (emptyRuleRepo) Update(ctx context.Context, r *rule.EmailRule) error        { return nil }
func (emptyRuleRepo) Delete(ctx context.Context, id string) error                { return nil }
func (emptyRuleRepo) Enable(ctx context.Context, id string, active bool) error   { return nil }

type emptySource struct{}

func (emptySource) FormFields(ctx context.Context, formID string) ([]resolver.FieldDef, error) {
	return nil, nil
}

func testPipeline(formRepo form.FormRepository, tplRepo template.TemplateRepository, sender Sender, events Events) (*Pipeline, *fakeSubRepo) {
	cache := resolver.NewResolutionCache(5*time.Minute, nil)
	res := resolver.New(emptySource{}, cache, nil, zap.NewNop())
	cfg := &config.Config{BatchSize: 5, BatchTimeoutCap: 30 * time.Second, RuleFetchTimeout: 5 * time.Second}
	processor := rule.NewProcessor(emptyRuleRepo{}, rule.NewEvaluator(res), res, cfg, zap.NewNop())

	repo := &fakeSubRepo{}
	p := NewPipeline(repo, formRepo, &fakeLeadService{}, tplRepo, processor, res, sender, events, zap.NewNop())
	return p, repo
}

func TestAcceptUnknownForm(t *testing.T) {
	p, _ := testPipeline(&fakeFormRepo{}, &fakeTemplateRepo{}, &fakeSender{}, &fakeEvents{})

	if _, err := p.Accept(context.Background(), "missing", map[string]interface{}{}); !errors.Is(err, ErrFormNotFound) {
		t.Errorf("err = %v, want ErrFormNotFound", err)
	}
}

func TestAcceptInactiveForm(t *testing.T) {
	f := inquiryForm()
	f.IsActive = false
	p, _ := testPipeline(&fakeFormRepo{form: f}, &fakeTemplateRepo{}, &fakeSender{}, &fakeEvents{})

	if _, err := p.Accept(context.Background(), "f1", map[string]interface{}{}); !errors.Is(err, ErrFormInactive) {
		t.Errorf("err = %v, want ErrFormInactive", err)
	}
}

func TestAcceptStampsLeadAndToken(t *testing.T) {
	p, repo := testPipeline(&fakeFormRepo{form: inquiryForm()}, &fakeTemplateRepo{}, &fakeSender{}, &fakeEvents{})

	sub, err := p.Accept(context.Background(), "f1", map[string]interface{}{
		"field_a1": "Dana Reyes",
		"field_a2": "dana@example.com",
	})
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if sub.LeadID == "" {
		t.Error("no lead linked")
	}
	if !strings.HasPrefix(sub.TrackingToken, sub.LeadID+"-") {
		t.Errorf("trackingToken %q does not embed lead id %q", sub.TrackingToken, sub.LeadID)
	}
	if sub.Data["leadId"] != sub.LeadID {
		t.Error("leadId not stamped into payload")
	}
	if len(repo.subs) != 1 {
		t.Errorf("persisted %d submissions, want 1", len(repo.subs))
	}
}

func newMatchedRule(tplID primitive.ObjectID) rule.EmailRule {
	return rule.EmailRule{
		ID:            primitive.NewObjectID(),
		Name:          "welcome",
		TemplateID:    tplID,
		RecipientType: rule.RecipientField,
	}
}

func TestDeliverStaticRecipientWins(t *testing.T) {
	tpl := &template.EmailTemplate{ID: primitive.NewObjectID(), Subject: "hi", Body: "body"}
	sender := &fakeSender{}
	p, _ := testPipeline(&fakeFormRepo{form: inquiryForm()}, &fakeTemplateRepo{tpl: tpl}, sender, &fakeEvents{})

	r := newMatchedRule(tpl.ID)
	r.RecipientType = rule.RecipientStatic
	r.RecipientEmail = "owner@example.com"
	r.RecipientField = "email"

	sub := &Submission{ID: primitive.NewObjectID(), FormID: "f1", Data: map[string]interface{}{"email": "dana@example.com"}}
	p.deliver(context.Background(), zap.NewNop(), sub, r, "corr-1")

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if got := sender.sent[0].To; len(got) != 1 || got[0] != "owner@example.com" {
		t.Errorf("To = %v, want the static recipient", got)
	}
}

func TestDeliverFieldRecipient(t *testing.T) {
	tpl := &template.EmailTemplate{ID: primitive.NewObjectID(), Subject: "hi", Body: "body"}
	sender := &fakeSender{}
	p, _ := testPipeline(&fakeFormRepo{form: inquiryForm()}, &fakeTemplateRepo{tpl: tpl}, sender, &fakeEvents{})

	r := newMatchedRule(tpl.ID)
	r.RecipientField = "email"

	sub := &Submission{ID: primitive.NewObjectID(), FormID: "f1", Data: map[string]interface{}{"email": "dana@example.com"}}
	p.deliver(context.Background(), zap.NewNop(), sub, r, "corr-1")

	if len(sender.sent) != 1 || sender.sent[0].To[0] != "dana@example.com" {
		t.Fatalf("sent = %v, want one message to the field value", sender.sent)
	}
}

func TestDeliverNoRecipientRejects(t *testing.T) {
	tpl := &template.EmailTemplate{ID: primitive.NewObjectID(), Subject: "hi", Body: "body"}
	sender := &fakeSender{}
	events := &fakeEvents{}
	p, _ := testPipeline(&fakeFormRepo{form: inquiryForm()}, &fakeTemplateRepo{tpl: tpl}, sender, events)

	r := newMatchedRule(tpl.ID)
	r.RecipientField = "nonexistentField"

	sub := &Submission{ID: primitive.NewObjectID(), FormID: "f1", Data: map[string]interface{}{}}
	p.deliver(context.Background(), zap.NewNop(), sub, r, "corr-1")

	if len(sender.sent) != 0 {
		t.Error("message sent despite missing recipient")
	}
	if len(sender.rejected) != 1 || sender.rejected[0].Error() != "no recipient email found" {
		t.Errorf("rejected = %v, want the no-recipient failure", sender.rejected)
	}
	if len(events.events) != 1 || events.events[0].Success {
		t.Errorf("events = %+v, want one failed delivery event", events.events)
	}
}

func TestDeliverRendersAndOverridesCc(t *testing.T) {
	tpl := &template.EmailTemplate{
		ID:        primitive.NewObjectID(),
		Subject:   "Thanks {{name}}!",
		Body:      "<p>See you, {{name}}. Ref {{trackingToken}}.</p>",
		CcEmails:  []string{"template-cc@example.com"},
		BccEmails: []string{"template-bcc@example.com"},
	}
	sender := &fakeSender{}
	p, _ := testPipeline(&fakeFormRepo{form: inquiryForm()}, &fakeTemplateRepo{tpl: tpl}, sender, &fakeEvents{})

	r := newMatchedRule(tpl.ID)
	r.RecipientType = rule.RecipientStatic
	r.RecipientEmail = "owner@example.com"
	r.CcEmails = []string{"rule-cc@example.com"}

	data := map[string]interface{}{
		"field_a1":      "Dana",
		"trackingToken": "ld42-1700000000000",
	}
	attachSideStructures(inquiryForm(), data)

	sub := &Submission{ID: primitive.NewObjectID(), FormID: "f1", Data: data}
	p.deliver(context.Background(), zap.NewNop(), sub, r, "corr-1")

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]

	if msg.Subject != "Thanks Dana!" {
		t.Errorf("subject = %q, want %q", msg.Subject, "Thanks Dana!")
	}
	if !strings.Contains(msg.HtmlBody, "Ref ld42-1700000000000") {
		t.Errorf("body = %q, want the tracking token substituted", msg.HtmlBody)
	}
	if len(msg.Cc) != 1 || msg.Cc[0] != "rule-cc@example.com" {
		t.Errorf("Cc = %v, want the rule's CC to override the template's", msg.Cc)
	}
	if len(msg.Bcc) != 1 || msg.Bcc[0] != "template-bcc@example.com" {
		t.Errorf("Bcc = %v, want the template's BCC kept when the rule sets none", msg.Bcc)
	}
}

func TestDeliverMissingTemplateRejects(t *testing.T) {
	sender := &fakeSender{}
	p, _ := testPipeline(&fakeFormRepo{form: inquiryForm()}, &fakeTemplateRepo{}, sender, &fakeEvents{})

	r := newMatchedRule(primitive.NewObjectID())
	r.RecipientType = rule.RecipientStatic
	r.RecipientEmail = "owner@example.com"

	sub := &Submission{ID: primitive.NewObjectID(), FormID: "f1", Data: map[string]interface{}{}}
	p.deliver(context.Background(), zap.NewNop(), sub, r, "corr-1")

	if len(sender.rejected) != 1 {
		t.Fatalf("rejected = %v, want one rejection for the missing template", sender.rejected)
	}
}
