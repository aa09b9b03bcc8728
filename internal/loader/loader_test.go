package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/sheetguard/internal/config"
	"github.com/GriffinCanCode/sheetguard/internal/cssom"
	"github.com/GriffinCanCode/sheetguard/internal/fetch"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
)

func newClient() *fetch.Client {
	cfg := config.Default().Fetch
	cfg.Retries = 0
	cfg.Timeout = 2 * time.Second
	return fetch.NewClient(cfg, logging.NewNop())
}

type fixture struct {
	page      *httptest.Server
	cdn       *httptest.Server
	plainHits atomic.Int32
	gotOrigin atomic.Value
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}

	f.cdn = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		switch r.URL.Path {
		case "/open.css":
			f.gotOrigin.Store(r.Header.Get("Origin"))
			w.Header().Set("Access-Control-Allow-Origin", "*")
			fmt.Fprint(w, ".open { color: green }")
		case "/closed.css":
			fmt.Fprint(w, ".closed { color: red }")
		case "/plain.css":
			f.plainHits.Add(1)
			fmt.Fprint(w, ".plain { color: blue }")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.cdn.Close)

	f.page = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, `<!doctype html>
<html><head>
<style>.inline { margin: 0 }</style>
<link rel="stylesheet" href="/local.css">
<link rel="stylesheet" href="%[1]s/open.css" crossorigin="anonymous">
<link rel="stylesheet" href="%[1]s/closed.css" crossorigin>
<link rel="stylesheet" href="%[1]s/plain.css">
<link rel="stylesheet" href="/missing.css">
<link rel="stylesheet" href="/local.css" disabled>
<link rel="stylesheet" href="data:text/css,a{}">
<link rel="icon" href="/favicon.ico">
<style type="text/less">@x: 1;</style>
</head><body></body></html>`, f.cdn.URL)
		case "/local.css":
			w.Header().Set("Content-Type", "text/css")
			fmt.Fprint(w, ".local { padding: 0 }\n.local2 { padding: 1px }")
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.page.Close)

	return f
}

func TestLoad(t *testing.T) {
	f := newFixture(t)
	l := New(newClient(), logging.NewNop())

	doc, err := l.Load(context.Background(), f.page.URL+"/")
	require.NoError(t, err)

	sheets := doc.StyleSheets()
	require.Len(t, sheets, 4)

	inline := sheets[0]
	assert.Equal(t, cssom.OwnerStyle, inline.Owner())
	rules, err := inline.CSSRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{".inline"}, rules[0].Selectors)

	local := sheets[1]
	assert.Equal(t, f.page.URL+"/local.css", local.Href())
	rules, err = local.CSSRules()
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	open := sheets[2]
	assert.Equal(t, f.cdn.URL+"/open.css", open.Href())
	_, err = open.CSSRules()
	assert.NoError(t, err)
	assert.Equal(t, f.page.URL, f.gotOrigin.Load())

	plain := sheets[3]
	assert.Equal(t, f.cdn.URL+"/plain.css", plain.Href())
	_, err = plain.CSSRules()
	assert.ErrorIs(t, err, cssom.ErrSecurity)
	assert.Equal(t, int32(0), f.plainHits.Load())
}

func TestLoadErrors(t *testing.T) {
	f := newFixture(t)
	l := New(newClient(), logging.NewNop())

	_, err := l.Load(context.Background(), f.page.URL+"/nope")
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = l.Load(context.Background(), f.page.URL+"/broken")
	assert.ErrorContains(t, err, "HTTP 500")

	_, err = l.Load(context.Background(), "ftp://files.test/")
	assert.Error(t, err)
}

func TestParseBaseHref(t *testing.T) {
	f := newFixture(t)
	l := New(newClient(), logging.NewNop())

	html := fmt.Sprintf(`<html><head>
<base href="%s/">
<link rel="preload stylesheet" href="plain.css">
</head></html>`, f.cdn.URL)

	doc, err := l.Parse(context.Background(), "https://site.test/page", strings.NewReader(html))
	require.NoError(t, err)

	sheets := doc.StyleSheets()
	require.Len(t, sheets, 1)
	assert.Equal(t, f.cdn.URL+"/plain.css", sheets[0].Href())
	_, err = sheets[0].CSSRules()
	assert.ErrorIs(t, err, cssom.ErrSecurity)
}

func TestParseRelativePageURL(t *testing.T) {
	l := New(newClient(), logging.NewNop())
	_, err := l.Parse(context.Background(), "/page", strings.NewReader("<html></html>"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	base, err := cssom.NewDocument("https://site.test/dir/page")
	require.NoError(t, err)

	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"a.css", "https://site.test/dir/a.css", true},
		{" /b.css#frag ", "https://site.test/b.css", true},
		{"//cdn.test/c.css", "https://cdn.test/c.css", true},
		{"", "", false},
		{"data:text/css,a{}", "", false},
		{"javascript:void(0)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, ok := resolve(base.URL(), tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, u.String())
			}
		})
	}
}
