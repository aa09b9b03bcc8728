package stylesheet_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/sheetguard/internal/cssom"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
	"github.com/GriffinCanCode/sheetguard/internal/stylesheet"
	"github.com/GriffinCanCode/sheetguard/internal/testutil"
)

func TestRepairFetchesOncePerSheet(t *testing.T) {
	const href = "https://cdn.test/theme.css"
	fetcher := testutil.NewMockFetcher(t)
	fetcher.On("Fetch", mock.Anything, href).
		Return(testutil.CSS(href, http.StatusOK, "@import url(x.css);\nbody { color: #111 }"), nil).
		Once()

	doc, err := cssom.NewDocument("https://site.test/")
	require.NoError(t, err)
	sheet := cssom.NewStyleSheet(href, cssom.OwnerLink, cssom.CrossOrigin())
	doc.Append(sheet)

	eval := stylesheet.New(doc, fetcher, stylesheet.WithLogger(logging.NewNop()))
	assert.Equal(t, 1, eval.Evaluate())
	assert.Equal(t, 0, eval.Evaluate())

	failed, err := eval.Fix(context.Background())
	require.NoError(t, err)
	assert.False(t, failed)

	rules, err := sheet.CSSRules()
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}
