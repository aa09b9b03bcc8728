package loader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sheetguard/internal/cssom"
	"github.com/GriffinCanCode/sheetguard/internal/fetch"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
)

const (
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptCSS  = "text/css,*/*;q=0.1"
)

// Fetcher retrieves pages and linked sheets.
type Fetcher interface {
	FetchWithHeaders(ctx context.Context, href string, headers map[string]string) (*fetch.Response, error)
}

// Loader turns pages into documents.
type Loader struct {
	fetcher     Fetcher
	constructor cssom.Constructor
	logger      *logging.Logger
}

// New creates a loader.
func New(fetcher Fetcher, logger *logging.Logger) *Loader {
	return &Loader{
		fetcher:     fetcher,
		constructor: cssom.Parser{},
		logger:      logger.Named("loader"),
	}
}

// Load fetches pageURL and parses it.
func (l *Loader) Load(ctx context.Context, pageURL string) (*cssom.Document, error) {
	resp, err := l.fetcher.FetchWithHeaders(ctx, pageURL, map[string]string{"Accept": acceptHTML})
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("load page %s: HTTP %d %s", pageURL, resp.Status, resp.StatusText)
	}

	text, err := resp.Text()
	if err != nil {
		return nil, fmt.Errorf("decode page %s: %w", pageURL, err)
	}
	return l.Parse(ctx, pageURL, strings.NewReader(text))
}

// link is a <link rel=stylesheet> waiting to be loaded.
type link struct {
	slot int
	href *url.URL
	cors bool
}

// Parse builds a document from HTML served at pageURL. Linked sheets are
// loaded concurrently; the document keeps their source order.
func (l *Loader) Parse(ctx context.Context, pageURL string, r io.Reader) (*cssom.Document, error) {
	doc, err := cssom.NewDocument(pageURL)
	if err != nil {
		return nil, err
	}

	page, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base := doc.URL()
	if href, ok := page.Find("base[href]").First().Attr("href"); ok {
		if u, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = u
		}
	}

	var (
		slots []*cssom.StyleSheet
		links []link
	)
	page.Find("link[rel], style").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "style":
			if !isCSSType(sel.AttrOr("type", "")) {
				return
			}
			slots = append(slots, l.inline(sel.Text()))

		case "link":
			if !isStylesheetLink(sel) {
				return
			}
			if _, disabled := sel.Attr("disabled"); disabled {
				return
			}
			href, ok := resolve(base, sel.AttrOr("href", ""))
			if !ok {
				return
			}
			_, cors := sel.Attr("crossorigin")
			links = append(links, link{slot: len(slots), href: href, cors: cors})
			slots = append(slots, nil)
		}
	})

	origin := doc.Origin()
	var wg sync.WaitGroup
	for _, lk := range links {
		if cssom.Origin(lk.href) != origin && !lk.cors {
			// no-cors cross-origin: present but unreadable
			slots[lk.slot] = cssom.NewStyleSheet(lk.href.String(), cssom.OwnerLink, cssom.CrossOrigin())
			continue
		}
		wg.Add(1)
		go func(lk link) {
			defer wg.Done()
			slots[lk.slot] = l.loadLink(ctx, origin, lk)
		}(lk)
	}
	wg.Wait()

	for _, sheet := range slots {
		if sheet != nil {
			doc.Append(sheet)
		}
	}

	l.logger.Debug("page parsed",
		zap.String("url", pageURL),
		zap.Int("sheets", doc.Len()),
		zap.Int("links", len(links)),
	)
	return doc, nil
}

func (l *Loader) inline(text string) *cssom.StyleSheet {
	parsed, err := l.constructor.Construct(text)
	if err != nil {
		l.logger.Debug("inline style did not parse", zap.Error(err))
		return cssom.NewStyleSheet("", cssom.OwnerStyle, cssom.Accessible(nil))
	}
	rules, _ := parsed.CSSRules()
	return cssom.NewStyleSheet("", cssom.OwnerStyle, cssom.Accessible(rules))
}

// loadLink fetches a linked sheet the way a browser would. A nil result
// means the load failed and the sheet never joins the collection.
func (l *Loader) loadLink(ctx context.Context, origin string, lk link) *cssom.StyleSheet {
	href := lk.href.String()
	logger := l.logger.With(zap.String("href", href))

	headers := map[string]string{"Accept": acceptCSS}
	crossOrigin := cssom.Origin(lk.href) != origin
	if crossOrigin {
		headers["Origin"] = origin
	}

	resp, err := l.fetcher.FetchWithHeaders(ctx, href, headers)
	if err != nil {
		logger.Warn("style sheet load failed", zap.Error(err))
		return nil
	}
	if !resp.OK() {
		logger.Warn("style sheet load failed", zap.Int("status", resp.Status))
		return nil
	}
	if crossOrigin {
		allowed := strings.TrimSpace(resp.Header.Get("Access-Control-Allow-Origin"))
		if allowed != "*" && allowed != origin {
			logger.Warn("style sheet blocked by CORS", zap.String("allow_origin", allowed))
			return nil
		}
	}

	text, err := resp.Text()
	if err != nil {
		logger.Warn("style sheet not decodable", zap.Error(err))
		return nil
	}

	var rules cssom.RuleList
	if parsed, err := l.constructor.Construct(text); err == nil {
		rules, _ = parsed.CSSRules()
	} else {
		logger.Debug("style sheet did not parse", zap.Error(err))
	}
	return cssom.NewStyleSheet(href, cssom.OwnerLink, cssom.Accessible(rules))
}

func isStylesheetLink(sel *goquery.Selection) bool {
	for _, rel := range strings.Fields(sel.AttrOr("rel", "")) {
		if strings.EqualFold(rel, "stylesheet") {
			return true
		}
	}
	return false
}

func isCSSType(t string) bool {
	t = strings.TrimSpace(t)
	return t == "" || strings.EqualFold(t, "text/css")
}

func resolve(base *url.URL, raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := base.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	u.Fragment = ""
	return u, true
}
