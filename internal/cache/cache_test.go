package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

func TestPathForDeterminism(t *testing.T) {
	s := New("/var/sec-filings")

	cases := []struct {
		ticker, form string
		format       models.Format
		want         string
	}{
		{"TSLA", "10-K", models.FormatText, "/var/sec-filings/TSLA/10-K/2025-01-30.txt"},
		{"tsla", "10-k", models.FormatText, "/var/sec-filings/TSLA/10-K/2025-01-30.txt"},
		{"TsLa", "10-K", models.FormatMarkdown, "/var/sec-filings/TSLA/10-K/2025-01-30.md"},
		{"AAPL", "DEF 14A", models.FormatHTML, "/var/sec-filings/AAPL/DEF 14A/2025-01-30.html"},
	}
	for _, tc := range cases {
		got, err := s.PathFor(tc.ticker, tc.form, "2025-01-30", tc.format)
		if err != nil {
			t.Fatalf("PathFor(%q, %q, %q): %v", tc.ticker, tc.form, tc.format, err)
		}
		if got != tc.want {
			t.Errorf("PathFor(%q, %q, %q) = %q, want %q", tc.ticker, tc.form, tc.format, got, tc.want)
		}
		// Same inputs must always derive the same path.
		again, _ := s.PathFor(tc.ticker, tc.form, "2025-01-30", tc.format)
		if again != got {
			t.Errorf("PathFor not deterministic: %q vs %q", got, again)
		}
	}
}

func TestPathForInvalidFormat(t *testing.T) {
	s := New("/tmp/x")
	_, err := s.PathFor("TSLA", "10-K", "2025-01-30", models.Format("pdf"))
	var invalid *models.ErrInvalidFormat
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	content := "Item 1A. Risk Factors\nSupply chain exposure.\n"

	path, err := s.Save("TSLA", "10-K", "2025-01-30", content, models.FormatText)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != content {
		t.Errorf("round trip mismatch: %q", data)
	}
	if !s.Exists("tsla", "10-k", "2025-01-30", models.FormatText) {
		t.Error("Exists should be case-insensitive on ticker/form")
	}
}

func TestSaveIdempotent(t *testing.T) {
	s := New(t.TempDir())
	content := "annual report body\n"

	p1, err := s.Save("TSLA", "10-K", "2025-01-30", content, models.FormatText)
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	p2, err := s.Save("TSLA", "10-K", "2025-01-30", content, models.FormatText)
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if p1 != p2 {
		t.Errorf("paths differ: %q vs %q", p1, p2)
	}

	filings, err := s.ListAll("TSLA", "10-K")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(filings) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(filings))
	}
	if filings[0].SizeBytes != int64(len(content)) {
		t.Errorf("size %d, want %d", filings[0].SizeBytes, len(content))
	}
}

func TestListAllFiltersCaseInsensitive(t *testing.T) {
	s := New(t.TempDir())
	s.Save("TSLA", "10-K", "2025-01-30", "a", models.FormatText)
	s.Save("TSLA", "10-Q", "2025-04-22", "b", models.FormatText)
	s.Save("AAPL", "10-K", "2024-11-01", "c", models.FormatText)

	lower, err := s.ListAll("tsla", "")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	upper, err := s.ListAll("TSLA", "")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(lower) != 2 || len(upper) != 2 {
		t.Fatalf("expected 2 TSLA entries, got %d and %d", len(lower), len(upper))
	}
	for i := range lower {
		if lower[i] != upper[i] {
			t.Errorf("case-sensitive listing mismatch at %d: %+v vs %+v", i, lower[i], upper[i])
		}
	}

	byForm, err := s.ListAll("", "10-k")
	if err != nil {
		t.Fatalf("ListAll by form: %v", err)
	}
	if len(byForm) != 2 {
		t.Errorf("expected 2 10-K entries, got %d", len(byForm))
	}
}

func TestListAllSortsDateDescending(t *testing.T) {
	s := New(t.TempDir())
	s.Save("TSLA", "10-K", "2023-01-31", "x", models.FormatText)
	s.Save("TSLA", "10-K", "2025-01-30", "x", models.FormatText)
	s.Save("TSLA", "10-K", "2024-01-29", "x", models.FormatText)

	filings, err := s.ListAll("TSLA", "10-K")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := []string{"2025-01-30", "2024-01-29", "2023-01-31"}
	for i, f := range filings {
		if f.FilingDate != want[i] {
			t.Errorf("position %d: got %s, want %s", i, f.FilingDate, want[i])
		}
	}
}

func TestListAllIgnoresForeignFiles(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	s.Save("TSLA", "10-K", "2025-01-30", "x", models.FormatText)

	// Stray files at each level and an unknown extension.
	os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(root, "TSLA", "notes.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(root, "TSLA", "10-K", "2025-01-30.pdf"), []byte("x"), 0o644)

	filings, err := s.ListAll("", "")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(filings) != 1 {
		t.Errorf("expected 1 entry, got %d: %+v", len(filings), filings)
	}
}

func TestMissingRootDegradesGracefully(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"))

	filings, err := s.ListAll("", "")
	if err != nil {
		t.Fatalf("ListAll on missing root: %v", err)
	}
	if len(filings) != 0 {
		t.Errorf("expected empty list, got %d", len(filings))
	}
	if usage := s.DiskUsage(); usage != 0 {
		t.Errorf("expected 0 disk usage, got %d", usage)
	}
}

func TestDiskUsage(t *testing.T) {
	s := New(t.TempDir())
	s.Save("TSLA", "10-K", "2025-01-30", strings.Repeat("a", 100), models.FormatText)
	s.Save("AAPL", "10-Q", "2025-05-02", strings.Repeat("b", 50), models.FormatMarkdown)

	if usage := s.DiskUsage(); usage != 150 {
		t.Errorf("expected 150 bytes, got %d", usage)
	}
}

func TestRemove(t *testing.T) {
	s := New(t.TempDir())
	s.Save("TSLA", "10-K", "2025-01-30", "x", models.FormatText)

	if err := s.Remove("TSLA", "10-K", "2025-01-30", models.FormatText); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Exists("TSLA", "10-K", "2025-01-30", models.FormatText) {
		t.Error("artifact still exists after Remove")
	}
	// Removing an absent key is not an error.
	if err := s.Remove("TSLA", "10-K", "2025-01-30", models.FormatText); err != nil {
		t.Errorf("Remove of absent key: %v", err)
	}
}
