// Package parse extracts story candidates and comment links from
// already-fetched documents. All functions are pure and tolerate
// malformed or partial HTML.
package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Story is a front-page entry: the site's native identifier plus the
// target URL. The id is treated as an opaque string.
type Story struct {
	ID  string
	URL string
}

// TopStories returns up to limit stories from a front-page document in
// rank order. Rows missing an id or a link are skipped. A limit <= 0
// means no limit.
func TopStories(doc string, limit int) []Story {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var stories []Story
	d.Find("tr.athing").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if limit > 0 && len(stories) >= limit {
			return false
		}
		id, ok := row.Attr("id")
		if !ok || id == "" {
			return true
		}
		// The site has shipped both markups over the years.
		anchor := row.Find("a.storylink").First()
		if anchor.Length() == 0 {
			anchor = row.Find("span.titleline a").First()
		}
		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			return true
		}
		stories = append(stories, Story{ID: id, URL: href})
		return true
	})
	return stories
}

// CommentLinks returns the URLs referenced inside comment text on a
// discussion-page document, in document order. Anchors without an href
// are skipped.
func CommentLinks(doc string) []string {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var links []string
	d.Find("span.commtext a").Each(func(_ int, anchor *goquery.Selection) {
		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			return
		}
		links = append(links, href)
	})
	return links
}
