package logger

import (
	"fmt"
	"os"
	"path/filepath"
)

// StringListReport collects lines that are written to a text file once a
// run is over.
type StringListReport struct {
	Title string
	Items []string
}

// NewStringListReport returns an empty report.
func NewStringListReport(title string) *StringListReport {
	return &StringListReport{Title: title, Items: []string{}}
}

// Add appends one line to the report.
func (r *StringListReport) Add(item string) {
	r.Items = append(r.Items, item)
}

// WriteToFile appends the items to dir/<prefix>-<title>.txt followed by a
// blank line, clears them and returns the file path.
func (r *StringListReport) WriteToFile(dir, prefix string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating base path: %w", err)
	}

	title := r.Title
	if title == "" {
		title = "untitled"
	}
	// Replace spaces and special characters with underscores
	safeTitle := ""
	for _, c := range title {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			safeTitle += string(c)
		} else {
			safeTitle += "_"
		}
	}

	reportFullPath := filepath.Join(dir, fmt.Sprintf("%s-%s.txt", prefix, safeTitle))

	f, err := os.OpenFile(reportFullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	for _, item := range r.Items {
		if _, err := fmt.Fprintln(f, item); err != nil {
			return "", fmt.Errorf("writing to file: %w", err)
		}
	}

	r.Items = []string{}
	if _, err := fmt.Fprintln(f); err != nil {
		return "", fmt.Errorf("writing new line to file: %w", err)
	}

	return reportFullPath, nil
}
