package generator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Marker comments delimiting the generated block inside index.html.
const (
	MarkerStart = "<!-- PROJECTS_START -->"
	MarkerEnd   = "<!-- PROJECTS_END -->"
)

var (
	copyrightRegex       = regexp.MustCompile(`©\s*\d{4}`)
	copyrightEntityRegex = regexp.MustCompile(`&copy;\s*\d{4}`)
	lastUpdatedRegex     = regexp.MustCompile(`(?s)<span id="page-last-updated">.*?</span>`)
	dupLastUpdatedRegex  = regexp.MustCompile(`(?s)(<span id="page-last-updated">.*?</span>)(\s*<span id="page-last-updated">.*?</span>)+`)
	copyrightParaRegex   = regexp.MustCompile(`(?s)(<p>&copy;\s*\d{4}.*?</p>)`)
	imgSrcRegex          = regexp.MustCompile(`(<img[^>]+src=["'])([^"']+)(["'])`)
)

// sanitizeAllowedHosts are image sources kept as-is inside the projects
// block; anything else there is an avatar or stale reference to replace.
var sanitizeAllowedHosts = []string{
	"opengraph.githubassets.com",
	"raw.githubusercontent.com",
}

// SpliceProjects replaces the content strictly between the markers with the
// rendered fragment. Missing markers or an empty fragment leave the document
// content untouched; the returned bool reports whether a splice happened.
func SpliceProjects(doc, fragment string) (string, bool) {
	if strings.TrimSpace(fragment) == "" {
		return doc, false
	}

	start := strings.Index(doc, MarkerStart)
	end := strings.Index(doc, MarkerEnd)
	if start == -1 || end == -1 || end < start {
		return doc, false
	}

	return doc[:start+len(MarkerStart)] + "\n" + fragment + "\n                    " + doc[end:], true
}

// RefreshFooter rewrites the copyright year and the "page-last-updated"
// footer span to now, inserting the span after the copyright paragraph when
// it does not exist yet. Duplicate spans left by earlier runs are collapsed.
func RefreshFooter(doc string, now time.Time) string {
	year := fmt.Sprintf("%d", now.Year())
	doc = copyrightRegex.ReplaceAllString(doc, "© "+year)
	doc = copyrightEntityRegex.ReplaceAllString(doc, "&copy; "+year)

	// Normalize escaped attributes left by earlier buggy runs.
	doc = strings.ReplaceAll(doc, `id=\"page-last-updated\"`, `id="page-last-updated"`)
	doc = dupLastUpdatedRegex.ReplaceAllString(doc, "$1")

	span := fmt.Sprintf(`<span id="page-last-updated">Última atualização: %s</span>`, now.Format("02/01/2006"))
	if strings.Contains(doc, `id="page-last-updated"`) {
		doc = lastUpdatedRegex.ReplaceAllString(doc, span)
	} else {
		doc = copyrightParaRegex.ReplaceAllString(doc, "$1 "+span)
	}
	return doc
}

// SanitizeProjectImages rewrites, inside the marker block only, every image
// source that is not a social preview or raw-content URL to the placeholder.
// Returns the updated document and the number of replacements.
func SanitizeProjectImages(doc, placeholder string) (string, int) {
	start := strings.Index(doc, MarkerStart)
	end := strings.Index(doc, MarkerEnd)
	if start == -1 || end == -1 || end < start {
		return doc, 0
	}

	count := 0
	block := imgSrcRegex.ReplaceAllStringFunc(doc[start:end], func(match string) string {
		parts := imgSrcRegex.FindStringSubmatch(match)
		for _, host := range sanitizeAllowedHosts {
			if strings.Contains(parts[2], host) {
				return match
			}
		}
		count++
		return parts[1] + placeholder + parts[3]
	})

	return doc[:start] + block + doc[end:], count
}
