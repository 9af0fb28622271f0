package linovelib

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/novel-downloader/internal/model"
)

const (
	selContent  = ".read-content > *"
	selPrevPage = ".mlfy_page > a:first-child"
	selNextPage = ".mlfy_page > a:last-child"
)

func (p *Provider) parsePage(body string) (model.PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return model.PageResult{}, err
	}

	var (
		text   strings.Builder
		images []model.ImageRef
	)

	doc.Find(selContent).Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "p":
			text.WriteString(restoreGlyphs(strings.TrimSpace(p.conv.Convert(node))))
			text.WriteByte('\n')
		case "br":
			text.WriteByte('\n')
		case "img":
			ref, ok := imageRef(node)
			if !ok {
				return
			}
			images = append(images, ref)
			text.WriteString("![](" + ref.FileName + ")\n")
		default:
			text.WriteByte('\n')
		}
	})

	prevHref, _ := doc.Find(selPrevPage).First().Attr("href")
	nextHref, _ := doc.Find(selNextPage).First().Attr("href")
	next := p.absolute(nextHref)

	return model.PageResult{
		HasNext:     strings.Contains(next, "_"),
		NextAddress: next,
		PrevAddress: p.absolute(prevHref),
		Text:        text.String(),
		Images:      images,
	}, nil
}

// imageRef builds the reference for an inline image. Lazy-load placeholders
// are skipped. The file name is the URL path with slashes replaced, so
// images from different directories do not collide.
func imageRef(node *goquery.Selection) (model.ImageRef, bool) {
	src, ok := node.Attr("data-src")
	if !ok || strings.TrimSpace(src) == "" {
		src, _ = node.Attr("src")
	}
	src = strings.TrimSpace(src)
	if src == "" || strings.Contains(src, "sloading") {
		return model.ImageRef{}, false
	}

	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return model.ImageRef{}, false
	}
	name := strings.ReplaceAll(strings.TrimPrefix(u.EscapedPath(), "/"), "/", "_")
	if name == "" {
		return model.ImageRef{}, false
	}

	return model.ImageRef{
		FileName: name,
		Address:  src,
		Referer:  BaseAddress,
	}, true
}
