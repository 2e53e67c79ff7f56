package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
	"github.com/xuri/excelize/v2"

	"github.com/at-ishikawa/pathtutor/internal/assets"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
	FormatXLSX     Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatMarkdown, FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported report format %q, must be one of md, pdf, xlsx", s)
}

func toTemplate(s Summary) assets.ReportTemplate {
	data := assets.ReportTemplate{
		LearnerID:   s.LearnerID,
		ClassID:     s.ClassID,
		GeneratedAt: s.GeneratedAt,
		Rating:      s.Rating,
		Points:      s.Points,
		Stale:       s.Stale,
		Lessons:     make([]assets.ReportLesson, 0, len(s.Lessons)),
	}
	if s.Current != nil {
		data.Current = &assets.ReportPosition{
			LessonID:   s.Current.LessonID,
			Question:   s.Current.PathIndex + 1,
			PathLength: s.Current.PathLength,
			Streak:     s.Current.Streak,
			Difficulty: s.Current.Difficulty.String(),
			Phase:      string(s.Current.Phase),
		}
	}
	for _, l := range s.Lessons {
		data.Lessons = append(data.Lessons, assets.ReportLesson{
			Name:           l.Name,
			Status:         string(l.Status),
			Total:          l.Total,
			Answered:       l.Answered,
			Correct:        l.Correct,
			Incorrect:      l.Incorrect,
			AvgTimeSeconds: l.AvgTimeSeconds,
			Points:         l.Points,
		})
	}
	return data
}

// WriteMarkdown renders the summary with the template at templatePath,
// falling back to the embedded template.
func WriteMarkdown(output io.Writer, templatePath string, s Summary) error {
	if err := assets.WriteProgressReport(output, templatePath, toTemplate(s)); err != nil {
		return fmt.Errorf("assets.WriteProgressReport() > %w", err)
	}
	return nil
}

// ConvertMarkdownToPDF converts a markdown file into a PDF next to it.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	renderer := mdtopdf.NewPdfRenderer("L", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}
	return pdfPath, nil
}

const (
	lessonsSheet  = "Lessons"
	overviewSheet = "Overview"
)

var lessonsHeader = []interface{}{"Lesson ID", "Lesson", "Status", "Total", "Answered", "Correct", "Incorrect", "Completion %", "Avg time (s)", "Points"}

// WriteXLSX writes one row per lesson and an overview sheet.
func WriteXLSX(output io.Writer, s Summary) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", lessonsSheet); err != nil {
		return fmt.Errorf("f.SetSheetName() > %w", err)
	}
	if err := f.SetSheetRow(lessonsSheet, "A1", &lessonsHeader); err != nil {
		return fmt.Errorf("f.SetSheetRow(header) > %w", err)
	}
	for i, l := range s.Lessons {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("excelize.CoordinatesToCellName() > %w", err)
		}
		row := []interface{}{l.ID, l.Name, string(l.Status), l.Total, l.Answered, l.Correct, l.Incorrect, l.CompletionPercent(), l.AvgTimeSeconds, l.Points}
		if err := f.SetSheetRow(lessonsSheet, cell, &row); err != nil {
			return fmt.Errorf("f.SetSheetRow(%s) > %w", l.ID, err)
		}
	}

	if _, err := f.NewSheet(overviewSheet); err != nil {
		return fmt.Errorf("f.NewSheet() > %w", err)
	}
	overview := [][]interface{}{
		{"Learner", s.LearnerID},
		{"Class", s.ClassID},
		{"Generated", s.GeneratedAt.Format("2006-01-02 15:04")},
		{"Points", s.Points},
	}
	if s.Rating > 0 {
		overview = append(overview, []interface{}{"Rating", s.Rating})
	}
	for i, row := range overview {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("excelize.CoordinatesToCellName() > %w", err)
		}
		if err := f.SetSheetRow(overviewSheet, cell, &row); err != nil {
			return fmt.Errorf("f.SetSheetRow(overview) > %w", err)
		}
	}

	if err := f.Write(output); err != nil {
		return fmt.Errorf("f.Write() > %w", err)
	}
	return nil
}

// Writer stores reports under an output directory.
type Writer struct {
	outputDirectory string
	templatePath    string
}

func NewWriter(outputDirectory, templatePath string) *Writer {
	return &Writer{outputDirectory: outputDirectory, templatePath: templatePath}
}

func (w *Writer) fileName(s Summary, ext string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	return filepath.Join(w.outputDirectory, replacer.Replace(s.LearnerID)+"_"+replacer.Replace(s.ClassID)+ext)
}

// Write renders the summary and returns the path of the written file.
func (w *Writer) Write(s Summary, format Format) (string, error) {
	if err := os.MkdirAll(w.outputDirectory, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", w.outputDirectory, err)
	}

	var outputFilename string
	switch format {
	case FormatXLSX:
		outputFilename = w.fileName(s, ".xlsx")
		if err := writeFile(outputFilename, func(output io.Writer) error { return WriteXLSX(output, s) }); err != nil {
			return "", err
		}
	case FormatMarkdown, FormatPDF:
		outputFilename = w.fileName(s, ".md")
		if err := writeFile(outputFilename, func(output io.Writer) error { return WriteMarkdown(output, w.templatePath, s) }); err != nil {
			return "", err
		}
		if format == FormatPDF {
			pdfPath, err := ConvertMarkdownToPDF(outputFilename)
			if err != nil {
				return "", fmt.Errorf("ConvertMarkdownToPDF(%s) > %w", outputFilename, err)
			}
			outputFilename = pdfPath
		}
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}

	if absPath, err := filepath.Abs(outputFilename); err == nil {
		return absPath, nil
	}
	return outputFilename, nil
}

func writeFile(filename string, write func(io.Writer) error) error {
	output, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", filename, err)
	}
	defer func() {
		_ = output.Close()
	}()
	return write(output)
}
