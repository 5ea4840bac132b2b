package preview

import (
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/joaosnet/gitfolio/internal/models"
)

// htmlImageRegex catches <img> tags goldmark keeps as raw HTML. Simple on
// purpose: src before an optional alt covers the README patterns seen in
// practice.
var htmlImageRegex = regexp.MustCompile(`<img\s+[^>]*?src=["']([^"']+)["'][^>]*?(?:alt=["']([^"']*)["'])?[^>]*?>`)

// extractMentions parses README content and returns every image mention in
// discovery order: markdown images first, raw HTML images after.
func extractMentions(content []byte) []models.ImageMention {
	var mentions []models.ImageMention

	// 1. Parse Markdown AST
	md := goldmark.New()
	reader := text.NewReader(content)
	doc := md.Parser().Parse(reader)

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			mentions = append(mentions, models.ImageMention{
				AltText: string(img.Text(content)),
				URL:     string(img.Destination),
			})
		}
		return ast.WalkContinue, nil
	})

	// 2. Regex fallback for HTML image tags
	matches := htmlImageRegex.FindAllSubmatch(content, -1)
	for _, match := range matches {
		mentions = append(mentions, models.ImageMention{
			URL:     string(match[1]),
			AltText: string(match[2]),
		})
	}

	return mentions
}
