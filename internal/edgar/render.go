package edgar

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

// blockSelector lists the leaf-block elements that become output lines when
// rendering a filing to plain text. Filings are table-heavy, so cells count
// as blocks of their own.
const blockSelector = "p, div, td, th, li, h1, h2, h3, h4, h5, h6"

// renderContent converts a raw filing document into the requested storage
// format. Plain-text primary documents (older filings) pass through
// untouched for every format.
func renderContent(raw []byte, format models.Format) (string, error) {
	content := string(raw)
	if !looksLikeHTML(content) {
		return content, nil
	}

	switch format {
	case models.FormatHTML:
		return content, nil
	case models.FormatText:
		return htmlToText(content)
	case models.FormatMarkdown:
		return htmlToMarkdown(content)
	}
	return "", &models.ErrInvalidFormat{Format: string(format)}
}

func looksLikeHTML(content string) bool {
	head := strings.ToLower(content)
	if len(head) > 2048 {
		head = head[:2048]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<body") || strings.Contains(head, "<div")
}

// stripNonContent drops script/style blocks and the inline-XBRL metadata
// header, which carries machine-readable tagging no reader wants in text.
func stripNonContent(doc *goquery.Document) {
	doc.Find("script, style, noscript").Remove()
	doc.Find("ix\\:header, ix\\:hidden").Remove()
}

// htmlToText renders a filing as one line per leaf block element, with
// intra-line whitespace collapsed. Line-oriented output keeps grep-style
// search and line-numbered previews meaningful.
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse filing HTML: %w", err)
	}
	stripNonContent(doc)

	var lines []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Leaf blocks only; containers repeat their children's text.
		if s.ChildrenFiltered(blockSelector).Length() > 0 {
			return
		}
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			lines = append(lines, text)
		}
	})

	if len(lines) == 0 {
		if text := strings.Join(strings.Fields(doc.Text()), " "); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// htmlToMarkdown converts a filing to markdown, preserving heading and table
// structure, with runs of blank lines collapsed to one.
func htmlToMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse filing HTML: %w", err)
	}
	stripNonContent(doc)

	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serialize filing HTML: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("convert filing to markdown: %w", err)
	}

	var out []string
	blank := false
	for _, line := range strings.Split(markdown, "\n") {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.TrimLeft(strings.Join(out, "\n"), "\n") + "\n", nil
}
