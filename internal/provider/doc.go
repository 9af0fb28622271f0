// Package provider defines the contract between the download pipeline and
// the site-specific code that understands a novel host.
//
// A Provider enumerates a novel into ordered works, builds requests with the
// headers a site expects, extracts page content and knows how to repair
// chapter addresses the site hides. The pipeline never depends on a concrete
// site type:
//
//	registry := provider.Registry{linovelib.New()}
//	p, err := registry.Find(address)
//	if errors.Is(err, provider.ErrUnsupported) {
//	    // configuration error: nobody handles this address
//	}
//
//	session := provider.NewSession(p, client, cookie)
//	works, err := p.Enumerate(ctx, session, address)
//
// # Address Repair
//
// PreviousSuccessor is the generic repair rule shared by providers: an
// unresolved chapter takes the successor address recorded on the chapter
// before it, and the first chapter of a work takes the one recorded on the
// last chapter of the previous work.
package provider
