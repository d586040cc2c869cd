// Package markup reduces markdown documents to the plain prose the
// summarizers work on.
package markup

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/roasbeef/resumo/internal/lexical"
)

var md = goldmark.New()

// PlainText parses markdown and returns its prose. Code blocks, raw HTML,
// images and bare links are dropped. Every block becomes at least one
// sentence, so headings and list items gain a period when they have none.
func PlainText(markdown string) string {
	src := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(src))

	var (
		blocks []string
		cur    strings.Builder
	)
	flush := func() {
		block := lexical.CollapseSpace(cur.String())
		if block != "" {
			blocks = append(blocks, lexical.EnsureTerminal(block))
		}
		cur.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock,
			*ast.RawHTML, *ast.Image, *ast.AutoLink:

			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if entering {
				cur.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					cur.WriteByte(' ')
				}
			}

		case *ast.String:
			if entering {
				cur.Write(node.Value)
			}
		}

		if !entering && n.Type() == ast.TypeBlock {
			flush()
		}

		return ast.WalkContinue, nil
	})
	flush()

	return strings.Join(blocks, " ")
}
