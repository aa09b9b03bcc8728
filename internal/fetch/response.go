package fetch

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var (
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
	charsetAtRule = regexp.MustCompile(`^@charset "([^"]+)";`)
)

// Response is a completed HTTP exchange.
type Response struct {
	URL        string
	Status     int
	StatusText string
	Header     http.Header
	body       []byte
}

// NewResponse builds a response; used by the client and by test fakes.
func NewResponse(url string, status int, header http.Header, body []byte) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{
		URL:        url,
		Status:     status,
		StatusText: http.StatusText(status),
		Header:     header,
		body:       body,
	}
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Body returns the raw body bytes.
func (r *Response) Body() []byte {
	return r.body
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Charset returns the charset parameter of Content-Type, lowercased.
func (r *Response) Charset() string {
	ct := r.ContentType()
	if ct == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

// DetectedType sniffs the body, e.g. "text/plain; charset=utf-8". Servers
// answering a style sheet URL with an HTML error page show up here.
func (r *Response) DetectedType() string {
	return mimetype.Detect(r.body).String()
}

// Text decodes the body to a string. The encoding is taken from a BOM, the
// Content-Type charset, an @charset rule, or detection, in that order.
func (r *Response) Text() (string, error) {
	body := r.body
	if bytes.HasPrefix(body, utf8BOM) {
		return string(body[len(utf8BOM):]), nil
	}

	label := r.Charset()
	if label == "" {
		if m := charsetAtRule.FindSubmatch(body); m != nil {
			label = strings.ToLower(string(m[1]))
		}
	}
	if label == "" {
		if utf8.Valid(body) {
			return string(body), nil
		}
		label = DetectCharset(body)
	}

	text, err := decode(label, body)
	if err == nil {
		return text, nil
	}

	// an unknown declared label still leaves the body itself
	if utf8.Valid(body) {
		return string(body), nil
	}
	detected := DetectCharset(body)
	if detected == label {
		return "", err
	}
	return decode(detected, body)
}

// DetectCharset guesses the encoding of data, defaulting to utf-8.
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

func decode(label string, body []byte) (string, error) {
	reader, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("decode body as %s: %w", label, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decode body as %s: %w", label, err)
	}
	return string(data), nil
}
