package linovelib

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/novel-downloader/internal/model"
)

const (
	selTitle        = "body > .wrap > .container > .book-meta > h1"
	selAuthor       = "div.container > div.book-meta > p > span:nth-child(1) > a"
	selVolumes      = "#volume-list > .volume"
	selVolumeTitle  = ".volume-info > h2"
	selVolumeCover  = ".volume-cover img"
	selChapterLinks = ".chapter-list > li > a"
)

var errNoTitle = errors.New("novel title not found")

var bookTitleMarks = strings.NewReplacer("《", " ", "》", " ")

func (p *Provider) parseCatalog(body string) ([]*model.Work, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	titleNode := doc.Find(selTitle).First()
	if titleNode.Length() == 0 {
		return nil, errNoTitle
	}
	name := strings.TrimSpace(titleNode.Text())
	author := strings.TrimSpace(doc.Find(selAuthor).First().Text())

	var works []*model.Work
	doc.Find(selVolumes).Each(func(seq int, volume *goquery.Selection) {
		title := strings.TrimSpace(volume.Find(selVolumeTitle).First().Text())
		coverNode := volume.Find(selVolumeCover).First()
		first, _ := coverNode.Closest("a").Attr("href")

		work := model.NewWork(seq, p.absolute(first), name, title)
		work.Author = author

		if src, ok := coverNode.Attr("data-original"); ok {
			work.Cover = coverRef(src)
		}

		volume.Find(selChapterLinks).Each(func(_ int, link *goquery.Selection) {
			chapterName := strings.TrimSpace(bookTitleMarks.Replace(link.Text()))
			href, _ := link.Attr("href")
			work.AddChapter(p.absolute(href), chapterName)
		})

		works = append(works, work)
	})

	return works, nil
}

func coverRef(src string) *model.ImageRef {
	src = strings.TrimSpace(src)
	if src == "" || strings.Contains(src, "no-cover") {
		return nil
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return nil
	}
	return &model.ImageRef{
		FileName: "cover" + path.Ext(u.Path),
		Address:  src,
		Referer:  BaseAddress,
	}
}
