package dump

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/yetidevworks/raygun/internal/style"
)

// ExtractTable implements SPEC_FULL.md §4.3b: find the first <table>...
// </table> block inside s, read <th> cells as headers and each <tr>'s <td>
// cells as rows, clean/clip every cell, and render the result as an ASCII
// grid. ok is false if s contains no table.
func ExtractTable(s string) (rendered string, ok bool) {
	headers, rows, found := parseTable(s)
	if !found {
		return "", false
	}

	cols := make([]style.Column, len(headers))
	for i, h := range headers {
		cols[i] = style.Column{Name: h}
	}
	if len(cols) == 0 {
		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}
		cols = make([]style.Column, width)
	}

	tbl := style.NewTable(cols...)
	for _, row := range rows {
		tbl.AddRow(row...)
	}
	return tbl.RenderASCIIGrid(), true
}

// parseTable walks s with the x/net/html tokenizer looking for the first
// <table>, returning its header cells (<th>) and body rows (<tr> of <td>).
func parseTable(s string) (headers []string, rows [][]string, found bool) {
	tok := html.NewTokenizer(strings.NewReader(s))

	inTable := false
	var curRow []string
	inRow := false
	var curCellStyle string // "th" or "td"
	var cellText strings.Builder
	inCell := false

	flushCell := func() {
		if !inCell {
			return
		}
		text := cleanCell(cellText.String())
		if curCellStyle == "th" {
			headers = append(headers, text)
		} else {
			curRow = append(curRow, text)
		}
		cellText.Reset()
		inCell = false
	}
	flushRow := func() {
		if inRow {
			flushCell()
			if len(curRow) > 0 {
				rows = append(rows, curRow)
			}
			curRow = nil
			inRow = false
		}
	}

	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			if found {
				flushRow()
			}
			return headers, rows, found
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			switch tag {
			case "table":
				if !found {
					inTable = true
					found = true
				}
			case "tr":
				if inTable {
					flushRow()
					inRow = true
				}
			case "th", "td":
				if inTable {
					inCell = true
					curCellStyle = tag
					cellText.Reset()
				}
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			switch tag {
			case "th", "td":
				flushCell()
			case "tr":
				flushRow()
			case "table":
				if inTable {
					flushRow()
					inTable = false
					return headers, rows, found
				}
			}
		case html.TextToken:
			if inCell {
				cellText.Write(tok.Text())
			}
		}
	}
}

// cleanCell normalizes a cell's already-decoded text (nested inline tags
// were dropped during tokenization) and clips it to 80 characters per
// SPEC_FULL.md §4.3b.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return Clip(s, 80)
}
