package models

import "time"

// RepositoryRecord is one repository as returned by the listing endpoint.
// It is read-only input for the selector and the preview resolver; the
// resolved preview is attached back onto it for rendering.
type RepositoryRecord struct {
	Owner          string
	Name           string
	Description    string
	Fork           bool
	Private        bool
	HTMLURL        string
	OwnerAvatarURL string
	DefaultBranch  string
	UpdatedAt      time.Time
	PushedAt       time.Time

	Preview *PreviewResult
}

// FullName returns the owner/name form used in logs.
func (r RepositoryRecord) FullName() string {
	return r.Owner + "/" + r.Name
}

// EffectiveTimestamp is the ordering key for repository selection:
// pushed_at when present, updated_at otherwise.
func (r RepositoryRecord) EffectiveTimestamp() time.Time {
	if !r.PushedAt.IsZero() {
		return r.PushedAt
	}
	return r.UpdatedAt
}

// Provenance records which fallback step produced a preview image.
type Provenance string

const (
	ProvenanceReadmeImage   Provenance = "readme_image"
	ProvenanceSocialPreview Provenance = "social_preview"
	ProvenanceOrgAvatar     Provenance = "org_avatar"
	ProvenancePlaceholder   Provenance = "placeholder"
)

// PreviewResult is the outcome of resolving a preview image for one
// repository. ImageRef is never empty; the placeholder path is used when
// every remote source fails.
type PreviewResult struct {
	ImageRef         string
	Provenance       Provenance
	LocallyPersisted bool
}

// ImageMention is a single image reference discovered in a README, in
// document order. Transient; never persisted.
type ImageMention struct {
	AltText string
	URL     string
}
