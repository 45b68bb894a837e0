package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	GenerateCertificate(data CertificateData) (string, error)
}

// CertificateGenerator — реализация на gofpdf.
type CertificateGenerator struct {
	RootDir  string // корень хранения, например "./files"
	fontName string
}

type CertificateData struct {
	CodeID    int64
	Code      string
	MachineID string
	UsedAt    time.Time
	IssuedAt  time.Time
	Filename  string // имя файла (без путей); если пусто — сгенерируем
}

func NewCertificateGenerator(rootDir string) *CertificateGenerator {
	return &CertificateGenerator{
		RootDir:  filepath.Clean(rootDir),
		fontName: "Helvetica",
	}
}

// GenerateCertificate — сертификат активации для использованного кода.
// Возвращает абсолютный путь к файлу.
func (g *CertificateGenerator) GenerateCertificate(data CertificateData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("certificate_%d.pdf", data.CodeID)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Activation Certificate %s", data.Code), false)
	pdf.SetAuthor("LicGate", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "CERTIFICATE OF ACTIVATION", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("No. LG-%06d  issued  %s",
		data.CodeID,
		data.UsedAt.Format("02.01.2006"),
	)
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	pdf.Ln(3)

	// ===== Детали лицензии
	g.sectionTitle(pdf, "License")
	g.kvLine(pdf, "Activation code", data.Code)
	g.kvLine(pdf, "Machine ID", data.MachineID)
	g.kvLine(pdf, "Code issued", data.IssuedAt.Format("02.01.2006 15:04"))
	g.kvLine(pdf, "Activated", data.UsedAt.Format("02.01.2006 15:04"))
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont(g.fontName, "", 11)
	body := "This document certifies that the activation code listed above was " +
		"redeemed once and is permanently bound to the machine identifier shown. " +
		"Repeated verification from the same machine remains valid; activation " +
		"from any other machine is refused."
	pdf.MultiCell(0, 6, body, "", "L", false)

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// === helpers ===

func (g *CertificateGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *CertificateGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *CertificateGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *CertificateGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // безопасность
	return filepath.Join(g.RootDir, filename), nil
}
