package page

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Document owns the console page markup for the lifetime of the process.
// The browser's single-threaded event loop becomes an explicit mutex here:
// every read or mutation of the tree goes through Update or one of the
// locking helpers below.
type Document struct {
	mu  sync.Mutex
	doc *goquery.Document
}

func Load(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page markup: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Update runs fn with exclusive access to the tree. Selections captured
// inside fn stay valid afterwards (nodes are mutated in place), but they
// must only be touched inside a later Update.
func (d *Document) Update(fn func(root *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}

// Render returns the current page as HTML.
func (d *Document) Render() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Html()
}

// RefreshThumbnails appends a fresh timestamp query parameter to every
// auxiliary thumbnail so clients re-fetch them, and returns how many
// images were touched. Sources that do not parse as URLs are left alone.
func (d *Document) RefreshThumbnails(now time.Time) int {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	refreshed := 0
	d.Update(func(root *goquery.Document) {
		root.Find("img.auto-thumb, img[data-auto-refresh]").Each(func(_ int, img *goquery.Selection) {
			src, ok := img.Attr("src")
			if !ok || src == "" {
				return
			}
			u, err := url.Parse(src)
			if err != nil {
				return
			}
			q := u.Query()
			q.Set("t", ts)
			u.RawQuery = q.Encode()
			img.SetAttr("src", u.String())
			refreshed++
		})
	})
	return refreshed
}

// ToggleTheme flips the dark class on body and reports whether dark mode
// is now active.
func (d *Document) ToggleTheme() bool {
	dark := false
	d.Update(func(root *goquery.Document) {
		body := root.Find("body").First()
		body.ToggleClass("dark")
		dark = body.HasClass("dark")
	})
	return dark
}
