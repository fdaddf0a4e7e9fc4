package service

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/storage"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/token"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

type leadMagnetFixture struct {
	leads *fakeLeadStore
	queue *fakeQueue
	svc   *LeadMagnetService
	dir   string
}

func newLeadMagnetFixture(t *testing.T) *leadMagnetFixture {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local-seo-checklist.pdf"), []byte("%PDF-1.7 checklist"), 0o644))

	f := &leadMagnetFixture{
		leads: newFakeLeadStore(),
		queue: &fakeQueue{},
		dir:   dir,
	}
	signer := token.NewDownloadSigner("download-secret-for-tests", 24*time.Hour)
	f.svc = NewLeadMagnetService(f.leads, storage.NewFSStore(dir), signer, f.queue, "https://riva.com")
	return f
}

func tokenFrom(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/api/lead-magnet/download", u.Path)
	return u.Query().Get("token")
}

func TestLeadMagnetRequestAndOpen(t *testing.T) {
	f := newLeadMagnetFixture(t)
	ctx := context.Background()

	res, err := f.svc.Request(ctx, &model.LeadMagnetRequest{
		Email:   "jane@cooperbakery.com",
		Name:    "Jane",
		Magnet:  "local-seo-checklist",
		Consent: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.ID)
	assert.Equal(t, []string{job.TaskLeadMagnet, job.TaskSyncContact}, f.queue.types())

	dl, err := f.svc.Open(ctx, tokenFrom(t, res.DownloadURL))
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 checklist", string(body))
	assert.Equal(t, "Riva-Local-SEO-Checklist.pdf", dl.Filename)
	assert.Equal(t, 1, f.leads.downloads[*res.ID])
}

func TestLeadMagnetRequestWithoutConsentSkipsSync(t *testing.T) {
	f := newLeadMagnetFixture(t)

	_, err := f.svc.Request(context.Background(), &model.LeadMagnetRequest{
		Email:  "jane@cooperbakery.com",
		Magnet: "local-seo-checklist",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{job.TaskLeadMagnet}, f.queue.types())
}

func TestLeadMagnetRequestSkipsSyncWhenAlreadySynced(t *testing.T) {
	f := newLeadMagnetFixture(t)
	req := &model.LeadMagnetRequest{Email: "jane@cooperbakery.com", Magnet: "local-seo-checklist", Consent: true}

	res, err := f.svc.Request(context.Background(), req)
	require.NoError(t, err)
	f.leads.leads[*res.ID].BrevoSynced = true

	_, err = f.svc.Request(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{job.TaskLeadMagnet, job.TaskSyncContact, job.TaskLeadMagnet}, f.queue.types())
}

func TestLeadMagnetRequestUnknownMagnet(t *testing.T) {
	f := newLeadMagnetFixture(t)

	_, err := f.svc.Request(context.Background(), &model.LeadMagnetRequest{Email: "jane@cooperbakery.com", Magnet: "ebook"})
	requireHTTPError(t, err, http.StatusBadRequest, "BAD_REQUEST")
	assert.Empty(t, f.leads.leads)
}

func TestLeadMagnetRequestHoneypot(t *testing.T) {
	f := newLeadMagnetFixture(t)

	res, err := f.svc.Request(context.Background(), &model.LeadMagnetRequest{BotField: "bot"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode())
	assert.Empty(t, f.leads.leads)
}

func TestLeadMagnetOpenRejectsBadToken(t *testing.T) {
	f := newLeadMagnetFixture(t)

	_, err := f.svc.Open(context.Background(), "not-a-token")

	requireHTTPError(t, err, http.StatusUnauthorized, errs.CodeInvalidToken)
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.NotNil(t, httpErr.Action)
	assert.Equal(t, "/resources", httpErr.Action.Value)
}

func TestLeadMagnetOpenMissingAsset(t *testing.T) {
	f := newLeadMagnetFixture(t)

	res, err := f.svc.Request(context.Background(), &model.LeadMagnetRequest{
		Email:  "jane@cooperbakery.com",
		Magnet: "social-media-calendar",
	})
	require.NoError(t, err)

	_, err = f.svc.Open(context.Background(), tokenFrom(t, res.DownloadURL))
	requireHTTPError(t, err, http.StatusNotFound, "NOT_FOUND")
	assert.Zero(t, f.leads.downloads[*res.ID])
}

func TestLookupMagnet(t *testing.T) {
	m, ok := LookupMagnet("google-business-profile-guide")
	require.True(t, ok)
	assert.Equal(t, "google-business-profile-guide.pdf", m.AssetKey)

	_, ok = LookupMagnet("nope")
	assert.False(t, ok)
}
