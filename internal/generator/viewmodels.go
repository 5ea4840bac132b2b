package generator

import "html/template"

// ProjectCard is the view model for a single timeline card.
type ProjectCard struct {
	Name           string
	Description    string
	HTMLURL        string
	Image          string
	Private        bool
	Left           bool
	UpdatedDisplay string
	UpdatedISO     string
}

// TimelineViewModel wraps the rendered cards with the timeline container and
// the "see more" button.
type TimelineViewModel struct {
	Cards   template.HTML
	MoreURL string
}
