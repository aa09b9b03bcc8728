// Package testutil provides test doubles shared by sheetguard's package tests.
package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/sheetguard/internal/fetch"
)

// MockFetcher is a mock implementation of the fetch client.
type MockFetcher struct {
	mock.Mock
}

// Fetch mocks the Fetch method.
func (m *MockFetcher) Fetch(ctx context.Context, href string) (*fetch.Response, error) {
	args := m.Called(ctx, href)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fetch.Response), args.Error(1)
}

// FetchWithHeaders mocks the FetchWithHeaders method.
func (m *MockFetcher) FetchWithHeaders(ctx context.Context, href string, headers map[string]string) (*fetch.Response, error) {
	args := m.Called(ctx, href, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fetch.Response), args.Error(1)
}

// NewMockFetcher creates a mock fetcher whose expectations are asserted when
// the test ends.
func NewMockFetcher(t *testing.T) *MockFetcher {
	t.Helper()
	m := new(MockFetcher)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// CSS builds a response carrying a style sheet.
func CSS(href string, status int, body string) *fetch.Response {
	header := http.Header{"Content-Type": []string{"text/css; charset=utf-8"}}
	return fetch.NewResponse(href, status, header, []byte(body))
}

// HTML builds a response carrying a page.
func HTML(href string, body string) *fetch.Response {
	header := http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}
	return fetch.NewResponse(href, http.StatusOK, header, []byte(body))
}
