package assets

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/progress-report.md.go.tmpl
var fallbackProgressReportTemplate string

const progressReportTemplateName = "progress-report.md.go.tmpl"

func ParseProgressReportTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, progressReportTemplateName, fallbackProgressReportTemplate)
}

var funcMap = template.FuncMap{
	"join": strings.Join,
	"percent": func(part, total int) int {
		if total == 0 {
			return 0
		}
		return part * 100 / total
	},
	"upper": strings.ToUpper,
}

func parseTemplateWithFallback(templatePath, fallbackName, fallbackTemplate string) (*template.Template, error) {
	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}
