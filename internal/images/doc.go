// Package images downloads the images of a work with bounded concurrency.
//
// FetchAll deduplicates references by source address, admits at most Limit
// downloads at a time and returns only after every admitted download has
// finished. A failed image never cancels its siblings and is not retried;
// callers that want a retry call FetchAll again with Failed(results).
//
// Example:
//
//	fan := images.New(session, images.Options{Limit: 3})
//	results := fan.FetchAll(ctx, work.Images(), dir)
//	for _, r := range images.Failed(results) {
//	    log.Printf("%s: %v", r.Ref.Address, r.Err)
//	}
package images
