package services

import (
	"bytes"
	"context"
	"fmt"

	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// Certificate renders a one page A4 certificate for the license
func (s *licenseService) Certificate(ctx context.Context, tenantID, licenseID uuid.UUID) ([]byte, error) {
	license, err := s.licenses.GetByID(ctx, tenantID, licenseID)
	if err != nil {
		return nil, err
	}
	agency, err := s.agencies.GetByID(ctx, tenantID, license.AgencyID)
	if err != nil {
		return nil, err
	}
	holder := license.ApplicantID.String()
	if user, err := s.users.GetByID(ctx, tenantID, license.ApplicantID); err == nil {
		holder = user.FullName()
	}
	return renderCertificate(license, agency, holder, s.clock.Now().Format("02-Jan-2006"))
}

func renderCertificate(license *models.License, agency *models.Agency, holder, printedOn string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("License "+license.LicenseNumber, false)
	pdf.AddPage()

	marginX := 20.0
	marginY := 25.0
	pdf.SetMargins(marginX, marginY, marginX)

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.CellFormat(0, 12, agency.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 10, "Certificate of License", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	rows := [][2]string{
		{"License Number", license.LicenseNumber},
		{"License Type", license.Type},
		{"Holder", holder},
		{"Status", string(license.Status)},
		{"Issued", license.IssuedAt.Format("02-Jan-2006")},
		{"Expires", license.ExpiresAt.Format("02-Jan-2006")},
	}
	if license.RenewedAt != nil {
		rows = append(rows, [2]string{"Last Renewed", license.RenewedAt.Format("02-Jan-2006")})
	}

	pdf.SetFillColor(240, 240, 240)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(55, 9, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 9, row[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(12)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Agency code %s. Printed %s.", agency.Code, printedOn), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
