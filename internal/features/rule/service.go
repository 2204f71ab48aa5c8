package rule

import (
	"context"
	"errors"
)

type RuleService interface {
	CreateRule(ctx context.Context, rule *EmailRule) error
	GetRule(ctx context.Context, id string) (*EmailRule, error)
	ListRules(ctx context.Context, formID string) ([]EmailRule, error)
	UpdateRule(ctx context.Context, rule *EmailRule) error
	DeleteRule(ctx context.Context, id string) error
	EnableRule(ctx context.Context, id string, active bool) error
}

type RuleServiceImpl struct {
	Repo RuleRepository
}

func NewRuleService(repo RuleRepository) RuleService {
	return &RuleServiceImpl{Repo: repo}
}

func (s *RuleServiceImpl) CreateRule(ctx context.Context, rule *EmailRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.Repo.Create(ctx, rule)
}

func (s *RuleServiceImpl) GetRule(ctx context.Context, id string) (*EmailRule, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *RuleServiceImpl) ListRules(ctx context.Context, formID string) ([]EmailRule, error) {
	return s.Repo.List(ctx, formID)
}

func (s *RuleServiceImpl) UpdateRule(ctx context.Context, rule *EmailRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.Repo.Update(ctx, rule)
}

func (s *RuleServiceImpl) DeleteRule(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *RuleServiceImpl) EnableRule(ctx context.Context, id string, active bool) error {
	return s.Repo.Enable(ctx, id, active)
}

func validateRule(rule *EmailRule) error {
	if rule.Name == "" {
		return errors.New("rule name is required")
	}
	if rule.FormID == "" {
		return errors.New("rule must belong to a form")
	}
	switch rule.RecipientType {
	case RecipientStatic:
		if rule.RecipientEmail == "" {
			return errors.New("static recipient requires an email address")
		}
	case RecipientField:
		if rule.RecipientField == "" {
			return errors.New("field recipient requires a field reference")
		}
	default:
		return errors.New("recipient_type must be static or field")
	}
	return nil
}
