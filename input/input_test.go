package input

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input file: %v", err)
	}
	return path
}

func TestReadLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int
		want    []string
	}{
		{
			name:    "preserves order and trims",
			content: "  hammer \nnails\n\tscrew driver\t\n",
			limit:   0,
			want:    []string{"hammer", "nails", "screw driver"},
		},
		{
			name:    "skips blank lines",
			content: "a\n\n   \nb\n",
			limit:   0,
			want:    []string{"a", "b"},
		},
		{
			name:    "limit truncates",
			content: "a\nb\nc\n",
			limit:   2,
			want:    []string{"a", "b"},
		},
		{
			name:    "limit larger than input",
			content: "a\nb\n",
			limit:   10,
			want:    []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadLines(writeFile(t, tt.content), tt.limit)
			if err != nil {
				t.Fatalf("read lines: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("keys = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	if _, err := ReadLines(filepath.Join(t.TempDir(), "absent.txt"), 0); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadTokens(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int
		want    []string
	}{
		{
			name:    "splits on any whitespace",
			content: "B000123 B000456\nB000789\n",
			limit:   0,
			want:    []string{"B000123", "B000456", "B000789"},
		},
		{
			name:    "limit truncates",
			content: "B000123\nB000456\nB000789\n",
			limit:   1,
			want:    []string{"B000123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadTokens(writeFile(t, tt.content), tt.limit)
			if err != nil {
				t.Fatalf("read tokens: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("keys = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadTokensMissingFile(t *testing.T) {
	if _, err := ReadTokens(filepath.Join(t.TempDir(), "absent.txt"), 0); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
