// Package resolve walks the chapter chains of chained works.
//
// Chapters are resolved strictly in order because the address of chapter
// N+1 may only be known after chapter N has been walked. For each chapter
// the Resolver:
//
//  1. repairs an unfetchable address from the preceding chapter's successor
//     address (or, for a first chapter, from the last chapter of the
//     preceding work),
//  2. marks the chapter Failed when no address can be established,
//  3. walks the chapter page by page, retrying a failing page up to the
//     retry ceiling without backoff,
//  4. records the last seen next address as the chapter's successor and
//     marks it Success.
//
// A chapter whose retries run out keeps the content gathered so far and is
// still marked Success, with Truncated set.
//
// Example:
//
//	r := resolve.New(p, session, resolve.Options{OnProgress: onProgress})
//	if err := r.Resolve(ctx, works, 2); err != nil {
//	    return err // only context cancellation
//	}
package resolve
