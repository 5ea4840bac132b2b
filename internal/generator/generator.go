// Package generator renders the project timeline fragment and splices it
// into the static index.html between the marker comments.
package generator

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/joaosnet/gitfolio/internal/models"
)

// Generator renders project cards from the embedded templates.
type Generator struct {
	tmpl    *template.Template
	account string
	logger  hclog.Logger
}

// New parses the card templates from tmplFS. account is the login whose
// repository listing the "see more" button links to.
func New(tmplFS fs.FS, account string, logger hclog.Logger) (*Generator, error) {
	tmpl, err := template.ParseFS(tmplFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Generator{tmpl: tmpl, account: account, logger: logger.Named("generator")}, nil
}

// RenderProjects renders the timeline fragment for the selected records.
// Cards alternate sides starting on the left. An empty selection renders an
// empty fragment, which the splice step treats as "leave the block alone".
func (g *Generator) RenderProjects(records []models.RepositoryRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	var cards bytes.Buffer
	for i, rec := range records {
		vm := ProjectCard{
			Name:        rec.Name,
			Description: rec.Description,
			HTMLURL:     rec.HTMLURL,
			Private:     rec.Private,
			Left:        i%2 == 0,
		}
		if rec.Preview != nil {
			vm.Image = rec.Preview.ImageRef
		}
		if !rec.UpdatedAt.IsZero() {
			vm.UpdatedDisplay = rec.UpdatedAt.Format("02/01/2006")
			vm.UpdatedISO = rec.UpdatedAt.Format(time.RFC3339)
		}
		if err := g.tmpl.ExecuteTemplate(&cards, "card.html", vm); err != nil {
			return "", fmt.Errorf("render card for %s: %w", rec.FullName(), err)
		}
	}

	vm := TimelineViewModel{
		Cards:   template.HTML(cards.String()),
		MoreURL: fmt.Sprintf("https://github.com/%s?tab=repositories", g.account),
	}
	var out bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&out, "timeline.html", vm); err != nil {
		return "", fmt.Errorf("render timeline: %w", err)
	}
	return out.String(), nil
}
