package mockbackend

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/jonathan/cover-letter-generator/internal/keywords"
	"github.com/jonathan/cover-letter-generator/internal/types"
)

const maxSkillsMentioned = 5

var openings = map[types.Tone]string{
	types.ToneFormal:         "I am writing to express my interest in the %s position at %s.",
	types.ToneConversational: "I was really glad to come across the %s opening at %s.",
	types.ToneEnthusiastic:   "I am thrilled to apply for the %s role at %s!",
	types.ToneConfident:      "I am confident that I would make an immediate impact as %s at %s.",
}

var styleParagraphs = map[types.TemplateStyle]string{
	types.StyleProfessional: "Throughout my career I have delivered reliable results, communicated clearly with stakeholders and taken ownership of the work in front of me.",
	types.StyleCreative:     "I love turning rough ideas into things people enjoy using, and I bring curiosity and a sense of play to every project I take on.",
	types.StyleTechnical:    "I enjoy digging into hard technical problems, designing systems that hold up under load and leaving codebases cleaner than I found them.",
	types.StyleExecutive:    "I have led teams through growth and change, aligning strategy with execution and building organizations that deliver measurable business impact.",
}

// filler pads a letter towards the requested length.
var filler = []string{
	"I take pride in learning quickly and adapting to new environments.",
	"Colleagues describe me as dependable, thoughtful and easy to work with.",
	"I am comfortable working independently as well as in close collaboration with others.",
	"I care about understanding the problem before reaching for a solution.",
	"I regularly look for ways to improve processes and share what I learn with my team.",
	"I value feedback and use it to keep raising the quality of my work.",
	"I am motivated by work that matters to the people it serves.",
	"I would welcome the chance to bring that same energy to your team.",
}

// ComposeLetter writes a deterministic cover letter for req.
// Missing details are taken from the first lines of the résumé and posting.
func ComposeLetter(req types.GenerationRequest) string {
	name := firstNonEmpty(req.ApplicantName, firstLine(req.ResumeText), "The Applicant")
	title := firstNonEmpty(req.JobTitle, firstLine(req.JobDescription), "open")
	company := firstNonEmpty(req.CompanyName, "your company")

	opening, ok := openings[req.Tone]
	if !ok {
		opening = openings[types.ToneFormal]
	}
	style, ok := styleParagraphs[req.TemplateStyle]
	if !ok {
		style = styleParagraphs[types.StyleProfessional]
	}

	paragraphs := []string{
		"Dear Hiring Manager,",
		fmt.Sprintf(opening, title, company) + " " + style,
	}
	if skills := mentionedSkills(req.ResumeText, req.JobDescription); len(skills) > 0 {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"My hands-on experience with %s lines up closely with what your team is looking for.", joinList(skills)))
	}
	if notes := strings.TrimSpace(req.AdditionalNotes); notes != "" {
		paragraphs = append(paragraphs, "I would also like to mention: "+notes)
	}

	closing := []string{"Thank you for considering my application. I look forward to discussing how I can contribute to " + company + ".", "Sincerely,\n" + signature(name, req)}
	words := countWords(paragraphs) + countWords(closing)

	var pad []string
	for i := 0; words < req.WordCount && i < 4*len(filler); i++ {
		sentence := filler[i%len(filler)]
		pad = append(pad, sentence)
		words += len(strings.Fields(sentence))
	}
	if len(pad) > 0 {
		paragraphs = append(paragraphs, strings.Join(pad, " "))
	}

	return strings.Join(append(paragraphs, closing...), "\n\n")
}

// mentionedSkills returns the posting's technical terms, preferring those the résumé also names.
func mentionedSkills(resume, posting string) []string {
	terms := keywords.TechnicalTerms(posting)
	shared := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.Contains(resume, t) {
			shared = append(shared, t)
		}
	}
	if len(shared) == 0 {
		shared = terms
	}
	if len(shared) > maxSkillsMentioned {
		shared = shared[:maxSkillsMentioned]
	}
	return shared
}

func signature(name string, req types.GenerationRequest) string {
	lines := []string{name}
	if req.ApplicantEmail != "" {
		lines = append(lines, req.ApplicantEmail)
	}
	if req.ApplicantPhone != "" {
		lines = append(lines, req.ApplicantPhone)
	}
	return strings.Join(lines, "\n")
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// firstLine returns the first non-blank line of s when it is short enough to be a name or title.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, ".…"))
		if line == "" {
			continue
		}
		if len(line) > 80 {
			return ""
		}
		return line
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func countWords(parts []string) int {
	n := 0
	for _, p := range parts {
		n += len(strings.Fields(p))
	}
	return n
}

// RenderDocument encodes a letter in format. PDF output is a placeholder that only
// carries the PDF magic; DOCX output is a minimal WordprocessingML package.
func RenderDocument(content string, format types.ExportFormat) []byte {
	switch format {
	case types.FormatPDF:
		return []byte("%PDF-1.4\n% mock export\n" + content + "\n%%EOF\n")
	case types.FormatDOCX:
		return renderDOCX(content)
	default:
		return []byte(content)
	}
}

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`
	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
)

func renderDOCX(content string) []byte {
	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, para := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		doc.WriteString("<w:p><w:r><w:t xml:space=\"preserve\">")
		_ = xml.EscapeText(&doc, []byte(strings.TrimSpace(para)))
		doc.WriteString("</w:t></w:r></w:p>")
	}
	doc.WriteString("</w:body></w:document>")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range []struct{ name, body string }{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", doc.String()},
	} {
		f, err := zw.Create(part.name)
		if err != nil {
			return nil
		}
		if _, err := f.Write([]byte(part.body)); err != nil {
			return nil
		}
	}
	if err := zw.Close(); err != nil {
		return nil
	}
	return buf.Bytes()
}
