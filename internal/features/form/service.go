package form

import (
	"context"
	"errors"
	"fmt"

	"vowops/internal/resolver"
	"vowops/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FormService interface {
	CreateForm(ctx context.Context, form *Form) error
	GetForm(ctx context.Context, id string) (*Form, error)
	ListForms(ctx context.Context) ([]Form, error)
	UpdateForm(ctx context.Context, form *Form) error
	DeleteForm(ctx context.Context, id string) error
}

type FormServiceImpl struct {
	Repo  FormRepository
	Cache *resolver.ResolutionCache
}

func NewFormService(repo FormRepository, cache *resolver.ResolutionCache) FormService {
	return &FormServiceImpl{Repo: repo, Cache: cache}
}

func (s *FormServiceImpl) CreateForm(ctx context.Context, form *Form) error {
	if form.Name == "" {
		return errors.New("form name is required")
	}
	assignFieldIDs(form)
	return s.Repo.Create(ctx, form)
}

func (s *FormServiceImpl) GetForm(ctx context.Context, id string) (*Form, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *FormServiceImpl) ListForms(ctx context.Context) ([]Form, error) {
	return s.Repo.List(ctx)
}

func (s *FormServiceImpl) UpdateForm(ctx context.Context, form *Form) error {
	assignFieldIDs(form)
	err := s.Repo.Update(ctx, form)
	if err == nil {
		// Cached field definitions and resolved values are stale now.
		s.Cache.InvalidateForm(form.ID.Hex())
	}
	return err
}

func (s *FormServiceImpl) DeleteForm(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	if err == nil {
		s.Cache.InvalidateForm(id)
	}
	return err
}

// assignFieldIDs gives every new section and field an opaque identifier and
// defaults custom-mapped fields to a slug of their label as the custom key.
func assignFieldIDs(form *Form) {
	for si := range form.Sections {
		section := &form.Sections[si]
		if section.ID == "" {
			section.ID = "section_" + primitive.NewObjectID().Hex()
		}
		for fi := range section.Fields {
			field := &section.Fields[fi]
			if field.ID == "" {
				field.ID = fmt.Sprintf("field_%s", primitive.NewObjectID().Hex())
			}
			if field.Mapping == MappingCustom && field.CustomKey == "" && field.Label != "" {
				field.CustomKey = utils.Slugify(field.Label)
			}
		}
	}
}

// fieldSource adapts the form repository to the resolver's FieldSource.
type fieldSource struct {
	repo FormRepository
}

func NewFieldSource(repo FormRepository) resolver.FieldSource {
	return &fieldSource{repo: repo}
}

func (s *fieldSource) FormFields(ctx context.Context, formID string) ([]resolver.FieldDef, error) {
	form, err := s.repo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errors.New("form not found")
	}

	fields := form.AllFields()
	defs := make([]resolver.FieldDef, 0, len(fields))
	for _, f := range fields {
		defs = append(defs, resolver.FieldDef{
			ID:        f.ID,
			Label:     f.Label,
			StableID:  f.StableID,
			Mapping:   string(f.Mapping),
			CustomKey: f.CustomKey,
			Type:      string(f.Type),
		})
	}
	return defs, nil
}
