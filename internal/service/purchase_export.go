package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/xuri/excelize/v2"
)

const purchaseSheet = "Compras"

var purchaseColumns = []any{
	"ID", "Estudiante", "NovaID", "Email", "Curso", "Adquirido", "Renovación", "Activo",
}

// Export renders the purchases matching filter as an XLSX workbook.
func (s *PurchaseService) Export(ctx context.Context, filter domain.PurchaseFilter) ([]byte, error) {
	purchases, err := s.purchaseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	students, courses, err := s.exportLookups(ctx, purchases)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), purchaseSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(purchaseSheet, "A1", &purchaseColumns); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(purchaseSheet, 1, 1, header); err != nil {
		return nil, err
	}

	now := time.Now()
	for i, p := range purchases {
		row := []any{
			p.ID.String(), "", "", "", p.CourseID.String(),
			p.AcquiredAt.Format(time.DateOnly), "", yesNo(p.ActiveAt(now)),
		}
		if st, ok := students[p.StudentID]; ok {
			row[1], row[2], row[3] = st.Name, st.NovaID, st.Email
		} else {
			row[1] = p.StudentID.String()
		}
		if c, ok := courses[p.CourseID]; ok {
			row[4] = c.Name
		}
		if p.RenewalDate != nil {
			row[6] = p.RenewalDate.Format(time.DateOnly)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(purchaseSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *PurchaseService) exportLookups(ctx context.Context, purchases []*domain.Purchase) (map[uuid.UUID]*domain.User, map[uuid.UUID]*domain.Course, error) {
	var studentIDs []uuid.UUID
	for _, p := range purchases {
		studentIDs = append(studentIDs, p.StudentID)
	}
	users, err := s.userRepo.GetByIDs(ctx, dedupe(studentIDs))
	if err != nil {
		return nil, nil, err
	}
	students := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		students[u.ID] = u
	}

	list, err := s.courseRepo.List(ctx, repository.CourseFilter{})
	if err != nil {
		return nil, nil, err
	}
	courses := make(map[uuid.UUID]*domain.Course, len(list))
	for _, c := range list {
		courses[c.ID] = c
	}
	return students, courses, nil
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
