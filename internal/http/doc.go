// Package http provides the HTTP transport used to fetch novel pages and images.
//
// The Client in this package handles:
//   - Default User-Agent headers
//   - Page fetches returned as strings
//   - File downloads streamed to disk with progress tracking
//   - Timeout handling
//
// Requests themselves are built by content providers, which attach the
// headers and cookies a site expects.
//
// # Basic Usage
//
//	client := http.NewClient(60 * time.Second)
//
//	// Fetch HTML page
//	html, err := client.Fetch(ctx, req)
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, imageReq, "/path/to/cover.jpg", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Cookies
//
// LoadCookie accepts either a literal Cookie header value or the path of a
// JSON cookie export and returns the header value to send.
package http
