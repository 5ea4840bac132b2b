// Package preview picks the single best representative image for a
// repository: a real content image from the README when one exists, the
// custom social preview next, the owner avatar as a last resort and a static
// placeholder when everything else fails.
package preview

import (
	"context"
	"errors"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/joaosnet/gitfolio/internal/gitclient"
	"github.com/joaosnet/gitfolio/internal/models"
)

// previewAssetHosts are the only hosts openGraphImageUrl points at when a
// repository has a genuine custom social preview. Anything else is the
// platform silently substituting the owner avatar.
var previewAssetHosts = map[string]struct{}{
	"opengraph.githubassets.com":              {},
	"repository-images.githubusercontent.com": {},
}

// RepoAPI is the slice of the GitHub client the resolver needs.
type RepoAPI interface {
	Authenticated() bool
	FetchReadme(ctx context.Context, owner, repo string) (string, error)
	DefaultBranch(ctx context.Context, owner, repo string) string
	SocialPreviewURL(ctx context.Context, owner, repo string) (string, error)
	RawContentURL(owner, repo, branch, path string) string
	DownloadRawFile(ctx context.Context, owner, repo, branch, path, dest string) (bool, error)
}

// Options configures resolution policy.
type Options struct {
	// AssetsDir is where private-repo images are persisted, relative to
	// the site root.
	AssetsDir string
	// PlaceholderPath is returned when no source resolves.
	PlaceholderPath string
	// DisableAvatarFallback skips step 3; later site revisions preferred
	// the placeholder over an avatar.
	DisableAvatarFallback bool
}

// Resolver executes the ordered fallback strategy. Safe for concurrent use
// across repositories; each resolution is internally sequential.
type Resolver struct {
	api    RepoAPI
	opts   Options
	logger hclog.Logger

	mu         sync.Mutex
	downloaded []string
}

func NewResolver(api RepoAPI, opts Options, logger hclog.Logger) *Resolver {
	return &Resolver{
		api:    api,
		opts:   opts,
		logger: logger.Named("preview"),
	}
}

// Resolve returns exactly one PreviewResult for the record. Every remote
// failure is absorbed as fallthrough to the next step; the result always
// carries a non-empty image reference.
func (r *Resolver) Resolve(ctx context.Context, rec models.RepositoryRecord) models.PreviewResult {
	strategies := []func(context.Context, models.RepositoryRecord) *models.PreviewResult{
		r.fromReadme,
		r.fromSocialPreview,
		r.fromOwnerAvatar,
	}
	for _, strategy := range strategies {
		if res := strategy(ctx, rec); res != nil {
			r.logger.Info("resolved preview image",
				"repo", rec.FullName(), "source", res.Provenance, "image", res.ImageRef)
			return *res
		}
	}

	r.logger.Info("no preview image found, using placeholder", "repo", rec.FullName())
	return models.PreviewResult{
		ImageRef:   r.opts.PlaceholderPath,
		Provenance: models.ProvenancePlaceholder,
	}
}

// DownloadedFiles returns the local paths persisted during resolution, for
// the driver to report for staging.
func (r *Resolver) DownloadedFiles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.downloaded...)
}

// fromReadme scans the README for the first image mention that survives the
// badge and avatar filters and resolves it to a usable reference.
func (r *Resolver) fromReadme(ctx context.Context, rec models.RepositoryRecord) *models.PreviewResult {
	if !r.api.Authenticated() {
		r.logger.Debug("no token, skipping readme scan", "repo", rec.FullName())
		return nil
	}

	content, err := r.api.FetchReadme(ctx, rec.Owner, rec.Name)
	if err != nil {
		if errors.Is(err, gitclient.ErrNotFound) {
			r.logger.Debug("no readme", "repo", rec.FullName())
		} else {
			r.logger.Warn("readme fetch failed", "repo", rec.FullName(), "error", err)
		}
		return nil
	}

	mentions := extractMentions([]byte(content))
	for _, m := range mentions {
		if reason := rejectMention(m); reason != "" {
			r.logger.Debug("skipping readme image", "repo", rec.FullName(), "url", m.URL, "reason", reason)
			continue
		}

		u, err := url.Parse(m.URL)
		if err == nil && u.IsAbs() {
			return &models.PreviewResult{ImageRef: m.URL, Provenance: models.ProvenanceReadmeImage}
		}

		if strings.HasPrefix(m.URL, "/") {
			return r.resolveRepoPath(ctx, rec, strings.TrimPrefix(m.URL, "/"))
		}

		if strings.HasPrefix(m.URL, ".") {
			// ../ and ./ paths are too ambiguous to resolve reliably.
			r.logger.Debug("skipping readme image", "repo", rec.FullName(), "url", m.URL, "reason", "directory-relative path")
			continue
		}

		decoded := m.URL
		if d, err := url.PathUnescape(m.URL); err == nil {
			decoded = d
		}
		return r.resolveRepoPath(ctx, rec, decoded)
	}

	return nil
}

// resolveRepoPath turns an in-repository image path into a reference. Private
// repositories get the file persisted locally so the page can serve it
// without credentials; public ones use the raw-content URL directly.
func (r *Resolver) resolveRepoPath(ctx context.Context, rec models.RepositoryRecord, repoPath string) *models.PreviewResult {
	branch := rec.DefaultBranch
	if branch == "" {
		branch = r.api.DefaultBranch(ctx, rec.Owner, rec.Name)
	}

	if rec.Private {
		name := localAssetName(rec.Owner, rec.Name, repoPath)
		dest := filepath.Join(filepath.FromSlash(r.opts.AssetsDir), name)
		if _, err := r.api.DownloadRawFile(ctx, rec.Owner, rec.Name, branch, repoPath, dest); err != nil {
			r.logger.Warn("image download failed, using raw URL", "repo", rec.FullName(), "path", repoPath, "error", err)
		} else {
			r.mu.Lock()
			r.downloaded = append(r.downloaded, dest)
			r.mu.Unlock()
			return &models.PreviewResult{
				ImageRef:         "/" + path.Join(r.opts.AssetsDir, name),
				Provenance:       models.ProvenanceReadmeImage,
				LocallyPersisted: true,
			}
		}
	}

	return &models.PreviewResult{
		ImageRef:   r.api.RawContentURL(rec.Owner, rec.Name, branch, repoPath),
		Provenance: models.ProvenanceReadmeImage,
	}
}

// fromSocialPreview accepts the openGraphImageUrl only when it is a genuine
// custom preview; an avatar-masquerading URL falls through.
func (r *Resolver) fromSocialPreview(ctx context.Context, rec models.RepositoryRecord) *models.PreviewResult {
	ogURL, err := r.api.SocialPreviewURL(ctx, rec.Owner, rec.Name)
	if err != nil {
		r.logger.Debug("social preview lookup failed", "repo", rec.FullName(), "error", err)
		return nil
	}
	if ogURL == "" {
		return nil
	}

	u, err := url.Parse(ogURL)
	if err != nil {
		return nil
	}
	if _, ok := previewAssetHosts[u.Host]; !ok {
		r.logger.Debug("openGraphImageUrl is not a custom preview", "repo", rec.FullName(), "url", ogURL)
		return nil
	}
	return &models.PreviewResult{ImageRef: ogURL, Provenance: models.ProvenanceSocialPreview}
}

func (r *Resolver) fromOwnerAvatar(_ context.Context, rec models.RepositoryRecord) *models.PreviewResult {
	if r.opts.DisableAvatarFallback || rec.OwnerAvatarURL == "" {
		return nil
	}
	return &models.PreviewResult{ImageRef: rec.OwnerAvatarURL, Provenance: models.ProvenanceOrgAvatar}
}

// localAssetName derives the deterministic filename a downloaded image is
// persisted under: owner_repo_basename, lower-cased basename with spaces and
// percent-escapes normalized to underscores.
func localAssetName(owner, repo, repoPath string) string {
	base := path.Base(repoPath)
	base = strings.ReplaceAll(base, "%20", "_")
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.ToLower(base)
	prefix := strings.ReplaceAll(owner+"_"+repo, "/", "_")
	return prefix + "_" + base
}
