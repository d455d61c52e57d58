package link

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loft/internal/logging"
	"loft/internal/target"
)

var ErrInvalidURL = errors.New("invalid url")

// Enricher runs the best-effort pipeline: validate, fetch metadata, maybe
// capture a screenshot, persist. Only URL validation, an unresolvable owner
// and a persistence failure ever surface as errors; everything the network
// refuses to give us is recorded as nil fields.
type Enricher struct {
	Store    *Store
	Resolver *target.Resolver
	Client   *http.Client
	Shots    *ScreenshotCapture // nil when the capability is absent
}

// Preview is a one-off enrichment: no owner, no persistence, no screenshot.
type Preview struct {
	URL string
	Metadata
}

func NewEnricher(store *Store, resolver *target.Resolver, fetchTimeout time.Duration, shots *ScreenshotCapture) *Enricher {
	return &Enricher{
		Store:    store,
		Resolver: resolver,
		Client:   &http.Client{Timeout: fetchTimeout},
		Shots:    shots,
	}
}

func (e *Enricher) Enrich(ctx context.Context, owner target.Ref, rawURL string) (Attachment, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return Attachment{}, err
	}
	if err := e.Resolver.Resolve(ctx, owner); err != nil {
		return Attachment{}, err
	}

	meta := e.fetchMetadata(ctx, u.String())

	var shotPath *string
	if e.Shots != nil {
		name, err := e.Shots.Capture(ctx, u.String())
		if err != nil {
			logging.Get().WithField("url", u.String()).WithError(err).Debug("screenshot capture failed")
		} else {
			shotPath = &name
		}
	}

	a := Attachment{
		OwnerType:      owner.Kind,
		OwnerID:        owner.ID,
		URL:            u.String(),
		Title:          meta.Title,
		Description:    meta.Description,
		ImageURL:       meta.ImageURL,
		FaviconURL:     meta.FaviconURL,
		ScreenshotPath: shotPath,
		LastFetchedAt:  time.Now(),
	}
	if err := e.Store.Create(ctx, &a); err != nil {
		return Attachment{}, err
	}
	return a, nil
}

func (e *Enricher) Preview(ctx context.Context, rawURL string) (Preview, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return Preview{}, err
	}
	return Preview{URL: u.String(), Metadata: e.fetchMetadata(ctx, u.String())}, nil
}

// validateURL rejects anything that is not an absolute http(s) URL before a
// single byte goes over the network.
func validateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}
