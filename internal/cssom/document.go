package cssom

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Document owns the ordered style sheet collection of one page.
type Document struct {
	url *url.URL

	mu     sync.RWMutex
	sheets []*StyleSheet
}

// NewDocument creates an empty document for pageURL.
func NewDocument(pageURL string) (*Document, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("page URL must be absolute: %q", pageURL)
	}
	return &Document{url: parsed}, nil
}

// URL returns the document address.
func (d *Document) URL() *url.URL {
	u := *d.url
	return &u
}

// Origin returns scheme://host[:port] of the document.
func (d *Document) Origin() string {
	return Origin(d.url)
}

// StyleSheets returns a snapshot of the collection in document order.
func (d *Document) StyleSheets() []*StyleSheet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*StyleSheet(nil), d.sheets...)
}

// Append attaches a sheet at the end of the collection.
func (d *Document) Append(sheets ...*StyleSheet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sheets = append(d.sheets, sheets...)
}

// Remove detaches a sheet. It reports whether the sheet was attached.
func (d *Document) Remove(sheet *StyleSheet) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, s := range d.sheets {
		if s == sheet {
			d.sheets = append(d.sheets[:i:i], d.sheets[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of attached sheets.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sheets)
}

// Origin returns the serialized origin of u. Default ports are dropped and
// scheme and host lowercased so equal origins compare equal as strings.
func Origin(u *url.URL) string {
	port := u.Port()
	if (u.Scheme == "https" && port == "443") || (u.Scheme == "http" && port == "80") {
		port = ""
	}
	host := strings.ToLower(u.Hostname())
	if port != "" {
		host = host + ":" + port
	}
	return strings.ToLower(u.Scheme) + "://" + host
}
