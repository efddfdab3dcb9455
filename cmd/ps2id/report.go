package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"ps2id/internal/identification"
)

const (
	statusIdentified  = "identified"
	statusNotFound    = "not_found"
	statusUnreadable  = "unreadable"
	statusUnsupported = "unsupported"
	statusFailed      = "error"
)

type imageReport struct {
	Path     string   `json:"path" yaml:"path"`
	Status   string   `json:"status" yaml:"status"`
	Serial   string   `json:"serial,omitempty" yaml:"serial,omitempty"`
	Region   string   `json:"region,omitempty" yaml:"region,omitempty"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	DiscKind string   `json:"disc_kind,omitempty" yaml:"disc_kind,omitempty"`
	Tried    []string `json:"tried,omitempty" yaml:"tried,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func newImageReport(path string, result identification.Result, err error) imageReport {
	if err == nil {
		return imageReport{
			Path:     path,
			Status:   statusIdentified,
			Serial:   result.Serial,
			Region:   result.Region.String(),
			Title:    result.Title,
			DiscKind: result.DiscKind.String(),
		}
	}

	report := imageReport{Path: path, Status: statusFailed, Error: err.Error()}
	switch {
	case errors.Is(err, identification.ErrUnsupportedExtension):
		report.Status = statusUnsupported
	case errors.Is(err, identification.ErrUnreadableImage):
		report.Status = statusUnreadable
	case errors.Is(err, identification.ErrGameNotFound):
		report.Status = statusNotFound
	}
	var idErr *identification.Error
	if errors.As(err, &idErr) {
		report.Tried = idErr.Serials
	}
	return report
}

func (r imageReport) identified() bool {
	return r.Status == statusIdentified
}

func sortReports(reports []imageReport) {
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Path < reports[j].Path
	})
}

func countIdentified(reports []imageReport) int {
	n := 0
	for _, r := range reports {
		if r.identified() {
			n++
		}
	}
	return n
}

func renderReports(cmd *cobra.Command, format string, reports []imageReport) error {
	if handled, err := writeStructured(cmd, format, reports); handled {
		return err
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		detail := r.Title
		if !r.identified() {
			detail = r.Error
		}
		kind := ""
		if r.DiscKind != "" {
			kind = identification.DiscKind(r.DiscKind).Label()
		}
		rows = append(rows, []string{
			filepath.Base(r.Path),
			colorStatus(r.Status, colorize),
			r.Serial,
			r.Region,
			kind,
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(reportColumns, rows, nil))
	return nil
}
