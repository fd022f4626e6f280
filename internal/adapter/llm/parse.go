package llm

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"gita/internal/domain"
)

// AnswerParser splits a markdown model response into a short answer and a
// detailed explanation.
type AnswerParser struct {
	parser parser.Parser
}

func NewAnswerParser() *AnswerParser {
	return &AnswerParser{
		parser: goldmark.DefaultParser(),
	}
}

// Parse takes the first top-level paragraph as the short answer. Everything
// around it, in source order, becomes the detailed explanation. A response
// without any paragraph is returned whole as the short answer.
func (p *AnswerParser) Parse(response string) domain.Answer {
	source := []byte(strings.TrimSpace(response))
	if len(source) == 0 {
		return domain.Answer{}
	}

	doc := p.parser.Parse(text.NewReader(source))

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if node.Kind() != ast.KindParagraph {
			continue
		}
		lines := node.Lines()
		if lines.Len() == 0 {
			continue
		}
		start := lines.At(0).Start
		stop := lines.At(lines.Len() - 1).Stop

		var detail []string
		if before := strings.TrimSpace(string(source[:start])); before != "" {
			detail = append(detail, before)
		}
		if after := strings.TrimSpace(string(source[stop:])); after != "" {
			detail = append(detail, after)
		}
		return domain.Answer{
			ShortAnswer:         joinLines(source[start:stop]),
			DetailedExplanation: strings.Join(detail, "\n\n"),
		}
	}

	return domain.Answer{ShortAnswer: string(source)}
}

// joinLines unwraps a soft-wrapped paragraph onto one line.
func joinLines(b []byte) string {
	return strings.Join(strings.Fields(string(b)), " ")
}
