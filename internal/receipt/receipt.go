// Package receipt renders booking verification artifacts: the QR
// payload pointing at the public verification URL, the QR image
// itself and the downloadable PDF receipt. Rendering consumes a
// committed booking and never touches booking state, so the renderer
// is injected into handlers as a capability rather than wired to the
// repositories.
package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/turfbook/turf-booking/internal/repository"
	"github.com/turfbook/turf-booking/internal/utils"
)

// Renderer produces verification artifacts for a committed booking.
// Handlers depend on this interface so tests can substitute a stub.
type Renderer interface {
	QRPayload(publicID string) string
	QRPNG(publicID string) ([]byte, error)
	PDF(det *repository.BookingDetail) ([]byte, error)
}

// qrSize is the pixel edge of generated QR images.
const qrSize = 256

// PDFRenderer is the production Renderer. SiteURL is the public base
// URL of the deployment; QR payloads embed it so scanned codes open
// the live verification page.
type PDFRenderer struct {
	SiteURL string
}

// NewPDFRenderer returns a PDFRenderer for the given site base URL.
func NewPDFRenderer(siteURL string) *PDFRenderer {
	return &PDFRenderer{SiteURL: strings.TrimRight(siteURL, "/")}
}

// QRPayload builds the string encoded into the QR image: the fixed
// site base URL concatenated with the public verification path.
func (r *PDFRenderer) QRPayload(publicID string) string {
	return fmt.Sprintf("%s/verify/%s/", r.SiteURL, publicID)
}

// QRPNG encodes the verification URL for a booking as a PNG image.
func (r *PDFRenderer) QRPNG(publicID string) ([]byte, error) {
	return qrcode.Encode(r.QRPayload(publicID), qrcode.Medium, qrSize)
}

// PDF renders the downloadable A4 receipt: booking id, customer name
// and phone, each reserved slot with its display labels, slot count,
// status and total, plus the embedded QR image. The document is built
// entirely in memory; nothing is persisted.
func (r *PDFRenderer) PDF(det *repository.BookingDetail) ([]byte, error) {
	png, err := r.QRPNG(det.PublicID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Turf Booking Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(45, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}
	line("Booking ID:", det.PublicID)
	line("Name:", det.UserName)
	line("Phone:", det.Phone)
	line("Slots booked:", fmt.Sprintf("%d", len(det.Slots)))
	line("Status:", "CONFIRMED")
	line("Total:", fmt.Sprintf("Rs. %d", det.TotalAmount))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Reserved slots", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, s := range det.Slots {
		start, end := utils.SlotLabels(s.Date, s.Time)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s  |  %s  |  %s - %s", s.SportName, s.Date, start, end),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 75, pdf.GetY(), 60, 60, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
