package fileio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/user"
	"github.com/go-pdf/fpdf"
)

// ExportOverview renders the staff balance overview as a PDF. Supervisors and
// admins use it for offline reporting; regular employees are denied.
func (s *Service) ExportOverview(ctx context.Context, actor *user.User) (filename string, pdfBytes []byte, err error) {
	if !actor.IsAccepted() || actor.Role == user.RoleEmployee {
		s.logger.Warn("overview export denied", "actor_id", actor.ID)
		return "", nil, internal.ErrUnauthorizedActor
	}

	users, err := s.users.List(ctx, nil)
	if err != nil {
		return "", nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Staff Overview", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Staff Overview", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", s.now().Format("2006/01/02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	colWidths := []float64{55, 60, 25, 25, 25}
	headers := []string{"Name", "Email", "Role", "Vacation", "Overtime"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, head := range headers {
		pdf.CellFormat(colWidths[i], 7, head, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, u := range users {
		remaining, err := s.balances.RemainingVacation(ctx, u.ID)
		if err != nil {
			return "", nil, err
		}
		taken, budget, err := s.balances.OvertimePosition(ctx, u.ID)
		if err != nil {
			return "", nil, err
		}

		pdf.CellFormat(colWidths[0], 6, u.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 6, u.Email, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 6, string(u.Role), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[3], 6, fmt.Sprintf("%.1f d", remaining), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], 6, fmt.Sprintf("%.1f/%.1f h", taken, budget), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error("failed to render overview PDF", "error", err)
		return "", nil, err
	}

	filename = fmt.Sprintf("staff-overview-%s.pdf", s.now().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}
