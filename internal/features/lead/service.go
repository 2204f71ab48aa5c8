package lead

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type LeadService interface {
	Upsert(ctx context.Context, formID, name, email, phone string) (*Lead, error)
	GetLead(ctx context.Context, id string) (*Lead, error)
	ListLeads(ctx context.Context, formID string) ([]Lead, error)
	UpdateStatus(ctx context.Context, id string, status LeadStatus) error
	ExportXLSX(ctx context.Context, formID string) ([]byte, error)
}

type LeadServiceImpl struct {
	repo LeadRepository
	log  *zap.Logger
}

func NewLeadService(repo LeadRepository, log *zap.Logger) LeadService {
	return &LeadServiceImpl{repo: repo, log: log}
}

// Upsert finds the lead for this form/email pair or creates one, bumping its
// submission count either way. Without an email every submission gets a fresh
// lead; there is nothing to deduplicate on.
func (s *LeadServiceImpl) Upsert(ctx context.Context, formID, name, email, phone string) (*Lead, error) {
	if email != "" {
		existing, err := s.repo.FindByEmail(ctx, formID, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			existing.Submissions++
			if name != "" {
				existing.Name = name
			}
			if phone != "" {
				existing.Phone = phone
			}
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	lead := &Lead{
		FormID:      formID,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Status:      LeadNew,
		Submissions: 1,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *LeadServiceImpl) GetLead(ctx context.Context, id string) (*Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *LeadServiceImpl) ListLeads(ctx context.Context, formID string) ([]Lead, error) {
	return s.repo.List(ctx, formID)
}

func (s *LeadServiceImpl) UpdateStatus(ctx context.Context, id string, status LeadStatus) error {
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *LeadServiceImpl) ExportXLSX(ctx context.Context, formID string) ([]byte, error) {
	leads, err := s.repo.List(ctx, formID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	columns := []string{"Name", "Email", "Phone", "Status", "Submissions", "Created At"}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, lead := range leads {
		values := []interface{}{
			lead.Name,
			lead.Email,
			lead.Phone,
			string(lead.Status),
			lead.Submissions,
			lead.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	return buffer.Bytes(), nil
}
