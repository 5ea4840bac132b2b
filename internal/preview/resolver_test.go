package preview

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/joaosnet/gitfolio/internal/gitclient"
	"github.com/joaosnet/gitfolio/internal/models"
)

type fakeAPI struct {
	token     bool
	readme    string
	readmeErr error
	branch    string
	socialURL string
	socialErr error

	downloadErr   error
	downloadCalls int
	persisted     map[string]bool
}

func (f *fakeAPI) Authenticated() bool { return f.token }

func (f *fakeAPI) FetchReadme(_ context.Context, _, _ string) (string, error) {
	return f.readme, f.readmeErr
}

func (f *fakeAPI) DefaultBranch(_ context.Context, _, _ string) string {
	if f.branch == "" {
		return gitclient.FallbackBranch
	}
	return f.branch
}

func (f *fakeAPI) SocialPreviewURL(_ context.Context, _, _ string) (string, error) {
	return f.socialURL, f.socialErr
}

func (f *fakeAPI) RawContentURL(owner, repo, branch, path string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", owner, repo, branch, strings.TrimPrefix(path, "/"))
}

func (f *fakeAPI) DownloadRawFile(_ context.Context, _, _, _, _, dest string) (bool, error) {
	if f.persisted == nil {
		f.persisted = make(map[string]bool)
	}
	if f.persisted[dest] {
		return false, nil
	}
	f.downloadCalls++
	if f.downloadErr != nil {
		return false, f.downloadErr
	}
	f.persisted[dest] = true
	return true, nil
}

func newTestResolver(api RepoAPI, opts Options) *Resolver {
	if opts.AssetsDir == "" {
		opts.AssetsDir = "assets/project-images"
	}
	if opts.PlaceholderPath == "" {
		opts.PlaceholderPath = "./assets/css/images/icon.png"
	}
	return NewResolver(api, opts, hclog.NewNullLogger())
}

func publicRepo() models.RepositoryRecord {
	return models.RepositoryRecord{Owner: "joaosnet", Name: "demo", HTMLURL: "https://github.com/joaosnet/demo"}
}

func TestResolve_SkipsBadgeAcceptsScreenshot(t *testing.T) {
	api := &fakeAPI{
		token:  true,
		readme: "![CI](https://img.shields.io/badge/build-passing-green)\n\n![Screenshot](screenshots/app.png)\n",
	}
	r := newTestResolver(api, Options{})

	res := r.Resolve(context.Background(), publicRepo())
	require.Equal(t, models.ProvenanceReadmeImage, res.Provenance)
	require.Equal(t, "https://raw.githubusercontent.com/joaosnet/demo/main/screenshots/app.png", res.ImageRef)
	require.False(t, res.LocallyPersisted)
}

func TestResolve_AbsoluteURLAcceptedAsIs(t *testing.T) {
	api := &fakeAPI{token: true, readme: "![App screenshot here](https://example.com/shot.png)\n"}
	r := newTestResolver(api, Options{})

	res := r.Resolve(context.Background(), publicRepo())
	require.Equal(t, models.ProvenanceReadmeImage, res.Provenance)
	require.Equal(t, "https://example.com/shot.png", res.ImageRef)
}

func TestResolve_AvatarHostNeverReadmeProvenance(t *testing.T) {
	api := &fakeAPI{
		token:     true,
		readme:    "![Profile picture of owner](https://avatars.githubusercontent.com/u/42)\n",
		socialErr: gitclient.ErrTransport,
	}
	r := newTestResolver(api, Options{})

	rec := publicRepo()
	rec.OwnerAvatarURL = "https://avatars.githubusercontent.com/u/42"
	res := r.Resolve(context.Background(), rec)
	require.Equal(t, models.ProvenanceOrgAvatar, res.Provenance)
}

func TestResolve_RootRelativePublicUsesRawURL(t *testing.T) {
	api := &fakeAPI{token: true, readme: "![Dashboard view](/docs/dash.png)\n", branch: "trunk"}
	r := newTestResolver(api, Options{})

	res := r.Resolve(context.Background(), publicRepo())
	require.Equal(t, "https://raw.githubusercontent.com/joaosnet/demo/trunk/docs/dash.png", res.ImageRef)
	require.Zero(t, api.downloadCalls)
}

func TestResolve_PrivateRelativeDownloadsOnce(t *testing.T) {
	api := &fakeAPI{token: true, readme: "![App main screen](docs/Screen%20Shot.PNG)\n"}
	r := newTestResolver(api, Options{})

	rec := publicRepo()
	rec.Private = true

	res := r.Resolve(context.Background(), rec)
	require.Equal(t, models.ProvenanceReadmeImage, res.Provenance)
	require.True(t, res.LocallyPersisted)
	require.Equal(t, "/assets/project-images/joaosnet_demo_screen_shot.png", res.ImageRef)
	require.Equal(t, 1, api.downloadCalls)

	// Second resolution reuses the persisted file.
	again := r.Resolve(context.Background(), rec)
	require.Equal(t, res.ImageRef, again.ImageRef)
	require.Equal(t, 1, api.downloadCalls)
}

func TestResolve_PrivateDownloadFailureFallsBackToRawURL(t *testing.T) {
	api := &fakeAPI{
		token:       true,
		readme:      "![App main screen](docs/shot.png)\n",
		downloadErr: gitclient.ErrTransport,
	}
	r := newTestResolver(api, Options{})

	rec := publicRepo()
	rec.Private = true
	res := r.Resolve(context.Background(), rec)
	require.Equal(t, "https://raw.githubusercontent.com/joaosnet/demo/main/docs/shot.png", res.ImageRef)
	require.False(t, res.LocallyPersisted)
}

func TestResolve_DirectoryRelativeRejected(t *testing.T) {
	api := &fakeAPI{
		token:     true,
		readme:    "![Sibling directory image](../shared/img.png)\n",
		socialURL: "https://repository-images.githubusercontent.com/123/preview",
	}
	r := newTestResolver(api, Options{})

	res := r.Resolve(context.Background(), publicRepo())
	require.Equal(t, models.ProvenanceSocialPreview, res.Provenance)
}

func TestResolve_NoTokenSkipsReadme(t *testing.T) {
	api := &fakeAPI{
		token:     false,
		readme:    "![Would be used with a token](shot.png)\n",
		socialErr: gitclient.ErrMissingCredentials,
	}
	r := newTestResolver(api, Options{})

	rec := publicRepo()
	rec.OwnerAvatarURL = "https://avatars.githubusercontent.com/u/42"
	res := r.Resolve(context.Background(), rec)
	require.Equal(t, models.ProvenanceOrgAvatar, res.Provenance)
	require.Zero(t, api.downloadCalls)
}

func TestResolve_SocialPreviewCustomAccepted(t *testing.T) {
	api := &fakeAPI{
		token:     true,
		readmeErr: gitclient.ErrNotFound,
		socialURL: "https://opengraph.githubassets.com/abc/joaosnet/demo",
	}
	r := newTestResolver(api, Options{})

	res := r.Resolve(context.Background(), publicRepo())
	require.Equal(t, models.ProvenanceSocialPreview, res.Provenance)
	require.Equal(t, api.socialURL, res.ImageRef)
}

func TestResolve_SocialPreviewAvatarMasqueradeFallsThrough(t *testing.T) {
	api := &fakeAPI{
		token:     true,
		readmeErr: gitclient.ErrNotFound,
		socialURL: "https://avatars.githubusercontent.com/u/42?s=400",
	}
	r := newTestResolver(api, Options{})

	rec := publicRepo()
	rec.OwnerAvatarURL = "https://avatars.githubusercontent.com/u/42"
	res := r.Resolve(context.Background(), rec)
	require.Equal(t, models.ProvenanceOrgAvatar, res.Provenance)
}

func TestResolve_AvatarFallbackCanBeDisabled(t *testing.T) {
	api := &fakeAPI{
		token:     true,
		readmeErr: gitclient.ErrNotFound,
		socialURL: "https://avatars.githubusercontent.com/u/42?s=400",
	}
	r := newTestResolver(api, Options{DisableAvatarFallback: true})

	rec := publicRepo()
	rec.OwnerAvatarURL = "https://avatars.githubusercontent.com/u/42"
	res := r.Resolve(context.Background(), rec)
	require.Equal(t, models.ProvenancePlaceholder, res.Provenance)
	require.Equal(t, "./assets/css/images/icon.png", res.ImageRef)
}

func TestResolve_TotalExhaustionReturnsPlaceholder(t *testing.T) {
	api := &fakeAPI{
		token:     true,
		readmeErr: gitclient.ErrTransport,
		socialErr: gitclient.ErrTransport,
	}
	r := newTestResolver(api, Options{})

	res := r.Resolve(context.Background(), publicRepo())
	require.Equal(t, models.ProvenancePlaceholder, res.Provenance)
	require.NotEmpty(t, res.ImageRef)
}

func TestResolve_RecordsDownloadedFiles(t *testing.T) {
	api := &fakeAPI{token: true, readme: "![App main screen](docs/shot.png)\n"}
	r := newTestResolver(api, Options{})

	rec := publicRepo()
	rec.Private = true
	r.Resolve(context.Background(), rec)

	files := r.DownloadedFiles()
	require.Len(t, files, 1)
	require.Contains(t, files[0], "joaosnet_demo_shot.png")
}
