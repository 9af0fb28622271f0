// Package download provides the download orchestration logic for
// fetching novels.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Find the provider for the address
//  2. Enumerate the works (volumes) of the novel
//  3. Validate the selection
//  4. For every selected work, in order: skip it when its metadata record
//     exists, resolve its chapters, write the document and metadata, then
//     download its images
//
// # Basic Usage
//
//	manager := download.NewManager(settings, registry, progress.Logrus(logger))
//
//	err := manager.Initialize(ctx, "https://www.linovelib.com/novel/2356.html")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.Download(ctx, []int{0, 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// Works and chapters are processed sequentially; each chapter address may
// depend on the previous chapter. Only image downloads run in parallel,
// capped by settings.MaxConcurrentImages.
//
// # Errors
//
// Provider lookup, enumeration and selection errors abort the call before
// anything is written. Chapter and image failures never abort a work; they
// are reported as progress events and the work is still marked complete.
package download
