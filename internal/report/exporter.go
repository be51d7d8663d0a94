// Package report renders a validated review into the downloadable
// plain-text report artifact.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agrireview/agrireview/internal/domain"
	"github.com/agrireview/agrireview/internal/util"
)

// reviewerLabel appears in the report header.
const reviewerLabel = "AI Agronomy Professor"

// Exporter writes review reports to the output directory.
type Exporter struct {
	outputDir string
}

// NewExporter creates a new Exporter.
func NewExporter(outputDir string) *Exporter {
	return &Exporter{outputDir: outputDir}
}

// ReportFileName returns the artifact name for a reviewed document.
func ReportFileName(fileName string) string {
	return "Review_Report_" + fileName + ".txt"
}

// Format renders the fixed-layout report. Identical input always produces
// identical output; the date is an explicit parameter for that reason.
func (e *Exporter) Format(resp *domain.ReviewResponse, fileName string, date time.Time) string {
	var sb strings.Builder

	sb.WriteString("REVIEW REPORT FOR: " + fileName + "\n")
	sb.WriteString("REVIEWER: " + reviewerLabel + "\n")
	sb.WriteString("DATE: " + date.Format("2006-01-02") + "\n")

	sb.WriteString("\n--- EXECUTIVE SUMMARY ---\n")
	sb.WriteString(resp.Summary + "\n")

	sb.WriteString("\n--- SCORES ---\n")
	sb.WriteString("Logic: " + formatScore(resp.Scores.Logic) + "/100\n")
	sb.WriteString("Content: " + formatScore(resp.Scores.Content) + "/100\n")
	sb.WriteString("Structure: " + formatScore(resp.Scores.Structure) + "/100\n")
	sb.WriteString("Feasibility: " + formatScore(resp.Scores.Feasibility) + "/100\n")
	sb.WriteString("Scientific Rigor: " + formatScore(resp.Scores.Scientific) + "/100\n")

	sb.WriteString("\n--- DETAILED COMMENTS ---\n")
	for i, c := range resp.Comments {
		sb.WriteString(fmt.Sprintf("\n[%d] SEVERITY: %s\n", i+1, strings.ToUpper(string(c.Severity))))
		sb.WriteString(fmt.Sprintf("CONTEXT: %q\n", c.OriginalTextContext))
		sb.WriteString("CRITIQUE: " + c.Critique + "\n")
		sb.WriteString("SUGGESTION: " + c.Suggestion + "\n")
	}

	return sb.String()
}

// Write renders the report and saves it as Review_Report_<fileName>.txt in
// the output directory, creating the directory if needed. It returns the
// path of the written file.
func (e *Exporter) Write(resp *domain.ReviewResponse, fileName string) (string, error) {
	if err := util.EnsureDir(e.outputDir); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(e.outputDir, ReportFileName(fileName))
	content := e.Format(resp, fileName, time.Now())

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	return path, nil
}

// formatScore prints whole scores without a decimal point.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
