package link

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"loft/internal/logging"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "loft-link-preview/1.0 (+https://github.com/loft)"

// Metadata holds the best-effort preview fields pulled out of a page. Any of
// them may be nil.
type Metadata struct {
	Title       *string
	Description *string
	ImageURL    *string
	FaviconURL  *string
}

// fetchMetadata GETs the page and scrapes preview fields. Every failure mode
// (network error, non-2xx, unparseable body) folds into empty Metadata.
func (e *Enricher) fetchMetadata(ctx context.Context, pageURL string) Metadata {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Metadata{}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := e.Client.Do(req)
	if err != nil {
		logging.Get().WithField("url", pageURL).WithError(err).Debug("metadata fetch failed")
		return Metadata{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Get().WithFields(map[string]interface{}{
			"url":    pageURL,
			"status": resp.StatusCode,
		}).Debug("metadata fetch non-2xx")
		return Metadata{}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Metadata{}
	}

	// Relative hrefs resolve against where the page actually came from, so a
	// redirect to another host does not break favicon/image URLs.
	return extract(doc, resp.Request.URL)
}

func extract(doc *goquery.Document, base *url.URL) Metadata {
	var m Metadata

	m.Title = firstOf(
		metaContent(doc, `meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	m.Description = firstOf(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
	)
	m.ImageURL = resolve(base, firstOf(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
		metaContent(doc, `meta[property="twitter:image"]`),
	))
	m.FaviconURL = resolve(base, firstOf(
		linkHref(doc, `link[rel="icon"]`),
		linkHref(doc, `link[rel="shortcut icon"]`),
		linkHref(doc, `link[rel="apple-touch-icon"]`),
	))

	return m
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

func linkHref(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("href")
	return strings.TrimSpace(v)
}

func firstOf(candidates ...string) *string {
	for _, c := range candidates {
		if c != "" {
			return &c
		}
	}
	return nil
}

func resolve(base *url.URL, raw *string) *string {
	if raw == nil {
		return nil
	}
	ref, err := url.Parse(*raw)
	if err != nil {
		return nil
	}
	abs := base.ResolveReference(ref).String()
	return &abs
}
