package model

// ImageRef identifies one image to download.
//
// Two refs with the same Address are the same image, whatever their file
// names, so the image is fetched once.
type ImageRef struct {
	// FileName is the name of the file to write inside the work folder.
	FileName string

	// Address is the source URL of the image.
	Address string

	// Referer is an optional Referer header value for the request.
	Referer string
}

// DedupImages returns refs with duplicate source addresses removed, keeping
// the first occurrence of each address and the input order.
func DedupImages(refs []ImageRef) []ImageRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]ImageRef, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.Address]; ok {
			continue
		}
		seen[ref.Address] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// DistinctImages returns refs with exact duplicates (same address and file
// name) removed, keeping the input order.
func DistinctImages(refs []ImageRef) []ImageRef {
	seen := make(map[[2]string]struct{}, len(refs))
	out := make([]ImageRef, 0, len(refs))
	for _, ref := range refs {
		key := [2]string{ref.Address, ref.FileName}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref)
	}
	return out
}
