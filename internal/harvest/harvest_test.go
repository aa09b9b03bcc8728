package harvest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/sheetguard/internal/cssom"
	"github.com/GriffinCanCode/sheetguard/internal/fetch"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
	"github.com/GriffinCanCode/sheetguard/internal/shared/id"
	"github.com/GriffinCanCode/sheetguard/internal/stylesheet"
)

type staticFetcher map[string]int

func (f staticFetcher) Fetch(_ context.Context, href string) (*fetch.Response, error) {
	status, ok := f[href]
	if !ok {
		status = http.StatusNotFound
	}
	return fetch.NewResponse(href, status, http.Header{"Content-Type": []string{"text/css"}}, []byte(".x { color: red }")), nil
}

func newHarvester(t *testing.T, fetcher staticFetcher, opts []stylesheet.Option, sheets ...*cssom.StyleSheet) *Harvester {
	t.Helper()
	doc, err := cssom.NewDocument("https://site.test/")
	require.NoError(t, err)
	doc.Append(sheets...)
	eval := stylesheet.New(doc, fetcher, opts...)
	return New(doc, eval, logging.NewNop(), WithURL("https://site.test/"))
}

func TestFlushRepaired(t *testing.T) {
	fetcher := staticFetcher{"https://cdn.test/x.css": http.StatusOK}
	inline := cssom.NewStyleSheet("", cssom.OwnerStyle, nil)
	cross := cssom.NewStyleSheet("https://cdn.test/x.css", cssom.OwnerLink, cssom.CrossOrigin())
	h := newHarvester(t, fetcher, nil, inline, cross)

	p, err := h.Flush(context.Background())
	require.NoError(t, err)

	assert.True(t, p.InlinedAllStylesheets)
	assert.True(t, p.InvalidStylesheetsDetected)
	assert.Equal(t, "https://site.test/", p.URL)
	assert.Equal(t, h.SessionID().String(), p.SessionID)
	_, err = id.Timestamp(p.ID)
	assert.NoError(t, err)

	require.Len(t, p.Sheets, 2)
	assert.Equal(t, "style", p.Sheets[0].Owner)
	assert.Empty(t, p.Sheets[0].Rules)
	assert.Equal(t, "replaced-sheet", p.Sheets[1].Variant)
	require.Len(t, p.Sheets[1].Rules, 1)
	assert.Contains(t, p.Sheets[1].Rules[0], ".x")
	assert.False(t, p.Sheets[1].Inaccessible)
}

func TestFlushFailures(t *testing.T) {
	rejected := cssom.NewStyleSheet("https://cdn.test/gone.css", cssom.OwnerLink, cssom.CrossOrigin())
	rawText := cssom.NewStyleSheet("https://cdn.test/raw.css", cssom.OwnerLink, cssom.CrossOrigin())

	// the raw sheet repairs only as text; the gone sheet is rejected
	h := newHarvester(t,
		staticFetcher{"https://cdn.test/raw.css": http.StatusOK},
		[]stylesheet.Option{stylesheet.WithConstructor(cssom.Unsupported{})},
		rejected, rawText,
	)

	p, err := h.Flush(context.Background())
	require.NoError(t, err)
	assert.False(t, p.InlinedAllStylesheets)
	assert.True(t, p.InvalidStylesheetsDetected)

	require.Len(t, p.Sheets, 2)
	assert.True(t, p.Sheets[0].Inaccessible)
	assert.Equal(t, "native", p.Sheets[0].Variant)
	assert.Equal(t, ".x { color: red }", p.Sheets[1].CSSText)
	assert.Equal(t, "raw-text-only", p.Sheets[1].Variant)

	// the failure was consumed; the sticky flag was not
	p, err = h.Flush(context.Background())
	require.NoError(t, err)
	assert.True(t, p.InlinedAllStylesheets)
	assert.True(t, p.InvalidStylesheetsDetected)
}

func TestObserve(t *testing.T) {
	cross := cssom.NewStyleSheet("https://cdn.test/x.css", cssom.OwnerLink, cssom.CrossOrigin())
	h := newHarvester(t, staticFetcher{"https://cdn.test/x.css": http.StatusOK}, nil, cross)

	assert.Equal(t, 1, h.Observe())
	assert.Equal(t, 0, h.Observe())
}

func TestFlushCancelled(t *testing.T) {
	h := newHarvester(t, staticFetcher{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// nothing pending, so the cancelled context is never consulted
	p, err := h.Flush(ctx)
	require.NoError(t, err)
	assert.True(t, p.InlinedAllStylesheets)
	assert.False(t, p.InvalidStylesheetsDetected)
}

func TestWithSessionID(t *testing.T) {
	doc, err := cssom.NewDocument("https://site.test/")
	require.NoError(t, err)
	sid := uuid.New()
	h := New(doc, stylesheet.New(doc, staticFetcher{}), logging.NewNop(), WithSessionID(sid))
	assert.Equal(t, sid, h.SessionID())
}

func TestEncodeDecode(t *testing.T) {
	p := &Payload{
		ID:                         id.NewPayloadID().String(),
		SessionID:                  uuid.NewString(),
		Timestamp:                  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		InlinedAllStylesheets:      false,
		InvalidStylesheetsDetected: true,
		Sheets: []Sheet{
			{Href: "https://cdn.test/x.css", Owner: "link", Variant: "raw-text-only", CSSText: "a{}"},
			{Owner: "style", Variant: "native", Rules: []string{"b {}"}},
		},
	}

	data, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, p.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, p.Sheets, got.Sheets)
	assert.True(t, got.InvalidStylesheetsDetected)
	assert.False(t, got.InlinedAllStylesheets)

	_, err = Decode([]byte("not gzip"))
	assert.Error(t, err)
}

func TestJSONFieldNames(t *testing.T) {
	p := &Payload{ID: "harvest_x", InlinedAllStylesheets: true, Sheets: []Sheet{{Owner: "link", Inaccessible: true}}}
	data, err := p.JSON()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"inlined_all_stylesheets":true`)
	assert.Contains(t, s, `"invalid_stylesheets_detected":false`)
	assert.Contains(t, s, `"session_id":""`)
	assert.Contains(t, s, `"inaccessible":true`)
	assert.NotContains(t, s, `"css_text"`)
}
