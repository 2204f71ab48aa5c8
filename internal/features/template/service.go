package template

import (
	"context"
	"errors"
)

type TemplateService interface {
	CreateTemplate(ctx context.Context, template *EmailTemplate) error
	GetTemplate(ctx context.Context, id string) (*EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]EmailTemplate, error)
	UpdateTemplate(ctx context.Context, template *EmailTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
	Preview(ctx context.Context, id string, testData map[string]interface{}) (string, string, error)
}

type TemplateServiceImpl struct {
	Repo TemplateRepository
}

func NewTemplateService(repo TemplateRepository) TemplateService {
	return &TemplateServiceImpl{Repo: repo}
}

func (s *TemplateServiceImpl) CreateTemplate(ctx context.Context, template *EmailTemplate) error {
	if template.Name == "" {
		return errors.New("template name is required")
	}
	if template.Subject == "" {
		return errors.New("subject is required")
	}
	return s.Repo.Create(ctx, template)
}

func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, id string) (*EmailTemplate, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *TemplateServiceImpl) ListTemplates(ctx context.Context) ([]EmailTemplate, error) {
	return s.Repo.List(ctx)
}

func (s *TemplateServiceImpl) UpdateTemplate(ctx context.Context, template *EmailTemplate) error {
	return s.Repo.Update(ctx, template)
}

func (s *TemplateServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// Preview renders a template against caller-supplied test data, without any
// mapped-value layer, so authors can check placeholder names.
func (s *TemplateServiceImpl) Preview(ctx context.Context, id string, testData map[string]interface{}) (string, string, error) {
	template, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	if template == nil {
		return "", "", errors.New("template not found")
	}

	subject := Render(template.Subject, testData, nil)
	body := Render(template.Body, testData, nil)
	return subject, body, nil
}
