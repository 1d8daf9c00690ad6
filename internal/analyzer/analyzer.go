// Package analyzer turns a bare URL into a fully populated listing by
// fetching the page, reading its metadata and asking an LLM for a
// classification. Every step degrades: a missing LLM or a failed probe
// yields a poorer listing, not an error.
package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gitdex/gitdex/internal/domain"
	"github.com/gitdex/gitdex/internal/logger"
	"github.com/gitdex/gitdex/internal/utils"
)

const (
	userAgent       = "Mozilla/5.0 (compatible; gitdex/1.0)"
	probeTimeout    = 3 * time.Second
	defaultLanguage = "en"
	defaultCategory = "Other"
)

var (
	manifestPaths = []string{"/manifest.json", "/manifest.webmanifest", "/site.webmanifest"}
	swPaths       = []string{"/sw.js", "/service-worker.js", "/serviceworker.js"}
)

type Analyzer struct {
	http *http.Client
	llm  *LLM
	log  logger.Logger
}

// New wires an analyzer. client may be nil; llm may be nil or disabled, in
// which case classification falls back to page heuristics.
func New(client *http.Client, llm *LLM, log logger.Logger) *Analyzer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Analyzer{http: client, llm: llm, log: log}
}

type pageMeta struct {
	Title       string
	Description string
	Favicon     string
	OGImage     string
	Language    string
	Keywords    string
	HasManifest bool
}

// Analyze fetches rawURL and builds a listing for it. HTTPS is tried first;
// when the site only answers over plain HTTP the listing records that and
// the PWA probes are skipped.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (domain.Site, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return domain.Site{}, fmt.Errorf("analyze %q: invalid url", rawURL)
	}

	supportsHTTPS := true
	pageURL := *parsed
	pageURL.Scheme = "https"
	doc, err := a.fetchDocument(ctx, pageURL.String())
	if err != nil {
		supportsHTTPS = false
		pageURL.Scheme = "http"
		doc, err = a.fetchDocument(ctx, pageURL.String())
		if err != nil {
			return domain.Site{}, fmt.Errorf("analyze %s: %w", rawURL, err)
		}
	}

	meta := extractMeta(doc, &pageURL)
	if meta.Favicon == "" {
		meta.Favicon = a.resolveFavicon(ctx, &pageURL)
	}

	site := domain.Site{
		URL:           rawURL,
		Title:         meta.Title,
		Description:   meta.Description,
		Favicon:       meta.Favicon,
		OGImage:       meta.OGImage,
		Language:      meta.Language,
		AgeRating:     domain.RatingSFW,
		SupportsHTTPS: supportsHTTPS,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if site.Title == "" {
		site.Title = pageURL.Host
	}

	// A plain-HTTP site cannot install as a PWA, skip the probes.
	if supportsHTTPS {
		site.SupportsPWA = meta.HasManifest || a.probePWA(ctx, &pageURL)
	}

	a.classify(ctx, &site, meta)
	return site, nil
}

// classify fills category, tags, age rating and recommendation, via the LLM
// when configured and from page heuristics otherwise.
func (a *Analyzer) classify(ctx context.Context, site *domain.Site, meta pageMeta) {
	if a.llm.Enabled() {
		verdict, err := a.llm.Classify(ctx, site.URL, site.Title, site.Description)
		if err == nil {
			site.Category = verdict.Category
			site.Tags = verdict.Tags
			if verdict.AgeRating == string(domain.RatingAdult) {
				site.AgeRating = domain.RatingAdult
			}
			site.Recommendation = verdict.Recommendation
			return
		}
		a.log.Warn("llm classification failed",
			logger.String("url", site.URL), logger.Error(err))
	}

	site.Category = defaultCategory
	for _, kw := range strings.Split(meta.Keywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			site.Tags = append(site.Tags, kw)
		}
	}
}

func (a *Analyzer) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func extractMeta(doc *goquery.Document, pageURL *url.URL) pageMeta {
	meta := pageMeta{
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Language: defaultLanguage,
	}

	if lang, ok := doc.Find("html").Attr("lang"); ok && strings.TrimSpace(lang) != "" {
		meta.Language = strings.TrimSpace(lang)
	}

	meta.Description = metaContent(doc, `meta[name="description"]`)
	if meta.Description == "" {
		meta.Description = metaContent(doc, `meta[property="og:description"]`)
	}
	meta.Keywords = metaContent(doc, `meta[name="keywords"]`)
	if img := metaContent(doc, `meta[property="og:image"]`); img != "" {
		meta.OGImage = resolveURL(pageURL, img)
	}

	if href, ok := doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).First().Attr("href"); ok {
		meta.Favicon = resolveURL(pageURL, strings.TrimSpace(href))
	}
	meta.HasManifest = doc.Find(`link[rel="manifest"]`).Length() > 0
	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// resolveFavicon is the fallback when the page declares no icon: the
// conventional /favicon.ico when it answers, an external icon service
// otherwise.
func (a *Analyzer) resolveFavicon(ctx context.Context, pageURL *url.URL) string {
	conventional := pageURL.Scheme + "://" + pageURL.Host + "/favicon.ico"
	if a.headOK(ctx, conventional) {
		return conventional
	}
	return FallbackIconURL(pageURL.Host)
}

// FallbackIconURL points at a public icon service for hosts that serve no
// icon themselves.
func FallbackIconURL(host string) string {
	return "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(host)
}

// probePWA checks the well-known manifest and service-worker paths. Both
// must answer for the site to count as installable.
func (a *Analyzer) probePWA(ctx context.Context, pageURL *url.URL) bool {
	base := pageURL.Scheme + "://" + pageURL.Host
	return a.anyHeadOK(ctx, base, manifestPaths) && a.anyHeadOK(ctx, base, swPaths)
}

func (a *Analyzer) anyHeadOK(ctx context.Context, base string, paths []string) bool {
	for _, path := range paths {
		if a.headOK(ctx, base+path) {
			return true
		}
	}
	return false
}

func (a *Analyzer) headOK(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.http.Do(req)
	if err != nil {
		return false
	}
	defer utils.Close(resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
