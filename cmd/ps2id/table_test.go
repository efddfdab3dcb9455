package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	tests := []struct {
		name    string
		columns []tableColumn
		rows    [][]string
		footer  []string
		check   func(t *testing.T, out string)
	}{
		{
			name:    "no columns",
			columns: nil,
			rows:    [][]string{{"x"}},
			check: func(t *testing.T, out string) {
				if out != "" {
					t.Fatalf("expected empty output, got %q", out)
				}
			},
		},
		{
			name:    "short rows are padded",
			columns: reportColumns,
			rows:    [][]string{{"Example.iso", "identified"}},
			check: func(t *testing.T, out string) {
				requireContains(t, out, "IMAGE", "TITLE", "Example.iso", "identified")
			},
		},
		{
			name:    "footer follows body",
			columns: statsColumns,
			rows:    [][]string{{"USA", "2", "usa.json"}, {"Europe", "1", "eu.json"}},
			footer:  []string{"Total", "3"},
			check: func(t *testing.T, out string) {
				body := strings.Index(out, "Europe")
				total := strings.Index(out, "Total")
				if body < 0 || total < body {
					t.Fatalf("expected Total footer after rows, got:\n%s", out)
				}
			},
		},
		{
			name:    "right aligned counts",
			columns: statsColumns,
			rows:    [][]string{{"USA", "7", "usa.json"}},
			footer:  []string{"Total", "1234"},
			check: func(t *testing.T, out string) {
				for _, line := range strings.Split(out, "\n") {
					if strings.Contains(line, "USA") && !strings.Contains(line, "    7 ") {
						t.Fatalf("expected right aligned count, got %q", line)
					}
				}
			},
		},
		{
			name:    "long titles wrap",
			columns: reportColumns,
			rows:    [][]string{{"Example.iso", "identified", "SLUS-12345", "USA", "DVD (UDF)", strings.Repeat("Word ", 20)}},
			check: func(t *testing.T, out string) {
				for _, line := range strings.Split(out, "\n") {
					if strings.Contains(line, strings.Repeat("Word ", 11)) {
						t.Fatalf("expected title to wrap at 48 columns, got %q", line)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, renderTable(tt.columns, tt.rows, tt.footer))
		})
	}
}
