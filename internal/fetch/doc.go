// Package fetch re-fetches style sheets and pages out of band.
//
// Built on go-resty/resty over a hashicorp/go-retryablehttp transport:
//   - Retries with backoff for transport errors
//   - Rate limiting per client instance (golang.org/x/time/rate)
//   - One circuit breaker per origin (internal/resilience)
//   - Charset handling for CSS: Content-Type parameter, then @charset,
//     then detection with saintfish/chardet, decoded via x/net/html/charset
//
// A completed HTTP exchange is always returned as a *Response, whatever its
// status; only transport failures come back as errors. Callers check OK.
//
// Example Usage:
//
//	client := fetch.NewClient(cfg.Fetch, logger)
//	resp, err := client.Fetch(ctx, "https://cdn.example/site.css")
//	if err != nil {
//		return err // network, DNS, breaker open
//	}
//	if !resp.OK() {
//		return nil // reachable, but nothing usable
//	}
//	text, err := resp.Text()
package fetch
