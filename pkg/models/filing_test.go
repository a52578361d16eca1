package models

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":          FormatText,
		"text":      FormatText,
		"TEXT":      FormatText,
		" markdown": FormatMarkdown,
		"html":      FormatHTML,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %s, want %s", in, got, want)
		}
	}

	_, err := ParseFormat("pdf")
	var invalid *ErrInvalidFormat
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if invalid.Format != "pdf" {
		t.Errorf("expected the rejected value recorded, got %q", invalid.Format)
	}
}

func TestFormatExtRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatText, FormatMarkdown, FormatHTML} {
		got, ok := FormatForExt(f.Ext())
		if !ok || got != f {
			t.Errorf("FormatForExt(%q) = %v, %v; want %v", f.Ext(), got, ok, f)
		}
	}
	if _, ok := FormatForExt("pdf"); ok {
		t.Error("expected pdf extension to be unrecognized")
	}
}

func TestParseFormSelector(t *testing.T) {
	if sel := ParseFormSelector(""); !sel.IsCore() {
		t.Error("expected empty selector to mean CORE")
	}
	if sel := ParseFormSelector("core"); !sel.IsCore() || sel.Key() != "CORE" {
		t.Errorf("expected CORE, got %s", sel.Key())
	}
	if sel := ParseFormSelector("All"); !sel.IsAll() || sel.Key() != "ALL" {
		t.Errorf("expected ALL, got %s", sel.Key())
	}

	sel := ParseFormSelector("10-k")
	if !sel.IsExplicit() || sel.Form() != "10-K" {
		t.Errorf("expected explicit uppercased form, got %q", sel.Form())
	}
	if !sel.Matches("10-K") || !sel.Matches("10-k") {
		t.Error("expected case-insensitive form match")
	}
	if sel.Matches("10-Q") {
		t.Error("expected explicit selector to reject other forms")
	}

	if !ParseFormSelector("ALL").Matches("SC 13G") {
		t.Error("expected ALL to match any form")
	}
	if ExplicitForm(" def 14a ").Form() != "DEF 14A" {
		t.Errorf("expected trimmed uppercase form, got %q", ExplicitForm(" def 14a ").Form())
	}
}
