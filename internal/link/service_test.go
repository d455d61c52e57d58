package link

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"loft/internal/note"
	"loft/internal/target"
	"loft/internal/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestEnricher(t *testing.T) (*Enricher, target.Ref) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&task.Task{}, &note.Note{}, &Attachment{}))

	tk := task.Task{Title: "anchor"}
	require.NoError(t, gdb.Create(&tk).Error)

	e := NewEnricher(&Store{DB: gdb}, &target.Resolver{DB: gdb}, 2*time.Second, nil)
	return e, target.Ref{Kind: target.KindTask, ID: tk.ID}
}

const richPage = `<!doctype html>
<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG description">
<meta name="description" content="Meta description">
<meta property="og:image" content="/img/cover.png">
<link rel="icon" href="/favicon.ico">
</head><body>hi</body></html>`

func TestEnrichExtractsMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, richPage)
	}))
	defer srv.Close()

	e, owner := newTestEnricher(t)

	a, err := e.Enrich(context.Background(), owner, srv.URL+"/page")
	require.NoError(t, err)
	require.NotZero(t, a.ID)

	require.NotNil(t, a.Title)
	assert.Equal(t, "OG Title", *a.Title)
	require.NotNil(t, a.Description)
	assert.Equal(t, "OG description", *a.Description)
	require.NotNil(t, a.ImageURL)
	assert.Equal(t, srv.URL+"/img/cover.png", *a.ImageURL)
	require.NotNil(t, a.FaviconURL)
	assert.Equal(t, srv.URL+"/favicon.ico", *a.FaviconURL)

	assert.Nil(t, a.ScreenshotPath, "screenshot capability absent")
	assert.False(t, a.LastFetchedAt.IsZero())
}

func TestEnrichFallbackFields(t *testing.T) {
	page := `<html><head>
<title> Plain Title </title>
<meta name="description" content="plain description">
<meta name="twitter:image" content="https://cdn.example.com/tw.png">
<link rel="shortcut icon" href="fav.png">
</head></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	e, owner := newTestEnricher(t)

	a, err := e.Enrich(context.Background(), owner, srv.URL+"/deep/dir/page.html")
	require.NoError(t, err)

	require.NotNil(t, a.Title)
	assert.Equal(t, "Plain Title", *a.Title)
	require.NotNil(t, a.Description)
	assert.Equal(t, "plain description", *a.Description)
	require.NotNil(t, a.ImageURL)
	assert.Equal(t, "https://cdn.example.com/tw.png", *a.ImageURL)
	// relative favicon resolves against the page path, not the site root
	require.NotNil(t, a.FaviconURL)
	assert.Equal(t, srv.URL+"/deep/dir/fav.png", *a.FaviconURL)
}

func TestEnrichResolvesAgainstRedirectedURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/moved/here", http.StatusFound)
	})
	mux.HandleFunc("/moved/here", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><link rel="icon" href="icon.png"></head></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e, owner := newTestEnricher(t)

	a, err := e.Enrich(context.Background(), owner, srv.URL+"/start")
	require.NoError(t, err)
	require.NotNil(t, a.FaviconURL)
	assert.Equal(t, srv.URL+"/moved/icon.png", *a.FaviconURL)
	// the stored url stays what the user gave us
	assert.Equal(t, srv.URL+"/start", a.URL)
}

func TestEnrichUnreachableHostStillPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := srv.URL
	srv.Close()

	e, owner := newTestEnricher(t)

	a, err := e.Enrich(context.Background(), owner, dead+"/gone")
	require.NoError(t, err)
	require.NotZero(t, a.ID)
	assert.Equal(t, dead+"/gone", a.URL)
	assert.Nil(t, a.Title)
	assert.Nil(t, a.Description)
	assert.Nil(t, a.ImageURL)
	assert.Nil(t, a.FaviconURL)
	assert.False(t, a.LastFetchedAt.IsZero())
}

func TestEnrichNon2xxYieldsNullFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	e, owner := newTestEnricher(t)

	a, err := e.Enrich(context.Background(), owner, srv.URL)
	require.NoError(t, err)
	assert.Nil(t, a.Title)
}

func TestEnrichInvalidURLCreatesNoRow(t *testing.T) {
	e, owner := newTestEnricher(t)
	ctx := context.Background()

	for _, raw := range []string{"not a url", "ftp://example.com/x", "/relative/only", "https://"} {
		_, err := e.Enrich(ctx, owner, raw)
		assert.ErrorIsf(t, err, ErrInvalidURL, "url %q", raw)
	}

	var n int64
	require.NoError(t, e.Store.DB.Model(&Attachment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestEnrichMissingOwner(t *testing.T) {
	e, _ := newTestEnricher(t)

	_, err := e.Enrich(context.Background(), target.Ref{Kind: target.KindNote, ID: 42}, "https://example.com")
	require.ErrorIs(t, err, target.ErrNotFound)
}

func TestEnrichSendsIdentifyingHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
	}))
	defer srv.Close()

	e, owner := newTestEnricher(t)
	_, err := e.Enrich(context.Background(), owner, srv.URL)
	require.NoError(t, err)

	assert.Equal(t, userAgent, gotUA)
	assert.Equal(t, "text/html", gotAccept)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, richPage)
	}))
	defer srv.Close()

	e, _ := newTestEnricher(t)

	p, err := e.Preview(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NotNil(t, p.Title)
	assert.Equal(t, "OG Title", *p.Title)

	var n int64
	require.NoError(t, e.Store.DB.Model(&Attachment{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err = e.Preview(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestScreenshotCaptureDisabled(t *testing.T) {
	assert.Nil(t, NewScreenshotCapture(false, t.TempDir(), time.Second))
}

func TestScreenshotNameUniquePerCapture(t *testing.T) {
	at := time.Now()
	a := screenshotName("https://example.com", at)
	b := screenshotName("https://example.com", at.Add(time.Nanosecond))
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9a-f]{32}\.png$`, a)
}
