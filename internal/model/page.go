package model

// PageResult is the structured content extracted from one fetched page.
type PageResult struct {
	// HasNext reports whether another page of the same chapter follows.
	HasNext bool

	// NextAddress is the address of the next page. When HasNext is false it
	// usually points at the first page of the following chapter.
	NextAddress string

	// PrevAddress is the previous-page address, if the page exposes one.
	PrevAddress string

	// Text is the extracted markdown fragment.
	Text string

	// Images are the images referenced by the fragment, in order.
	Images []ImageRef
}
