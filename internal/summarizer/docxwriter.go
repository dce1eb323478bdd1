package summarizer

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var reBold = regexp.MustCompile(`\*\*(.+?)\*\*`)

// WriteDocx renders the digest followed by the full transcript into a .docx report.
// A subtitle label line (e.g. "[Based on YouTube subtitles]") is set in bold.
func WriteDocx(d Digest, transcript, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	title := d.Title
	if title == "" {
		title = "Transcript"
	}
	addStyledRun(doc.AddParagraph(""), title, true, 16)

	if len(d.Tags) > 0 {
		addStyledRun(doc.AddParagraph(""), "Tags: "+strings.Join(d.Tags, ", "), false, 11)
	}

	if d.Summary != "" {
		addStyledRun(doc.AddParagraph(""), "Summary", true, 14)
		for _, para := range strings.Split(d.Summary, "\n") {
			if para = strings.TrimSpace(para); para != "" {
				addRichText(doc.AddParagraph(""), para)
			}
		}
	}

	addStyledRun(doc.AddParagraph(""), "Transcript", true, 14)
	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			addStyledRun(doc.AddParagraph(""), trimmed, true, fontSize)
			continue
		}
		doc.AddParagraph("").AddText(trimmed).Font(fontName).Size(fontSize).Color("000000")
	}

	return doc.SaveTo(outputPath)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
