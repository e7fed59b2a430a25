package page

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const fullCardMarkup = `<html><body>
<form class="upload-card">
  <input type="file" class="image-input">
  <button class="detect-btn" id="detectBtn">Detect</button>
  <div class="status-line"></div>
  <img class="preview-image" hidden>
  <img class="annotated-image" hidden>
  <p class="detect-meta"></p>
  <pre class="sensor-output"></pre>
</form>
</body></html>`

const legacyMarkup = `<html><body>
<div class="card">
  <input type="file" id="imageInput">
  <button id="detectBtn">Detect</button>
  <span id="statusText"></span>
  <img id="previewImg">
  <img id="outputImg">
  <div id="metaText"></div>
  <div id="iotResult"></div>
</div>
</body></html>`

func mustLoad(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := Load(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return doc
}

func locateFirst(t *testing.T, doc *Document) *Binding {
	t.Helper()
	var b *Binding
	var err error
	doc.Update(func(root *goquery.Document) {
		b, err = Locate(root, Triggers(root).First())
	})
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	return b
}

func TestLocateResolvesAllRoles(t *testing.T) {
	doc := mustLoad(t, fullCardMarkup)
	b := locateFirst(t, doc)

	if b.FileInput == nil || b.Status == nil {
		t.Fatal("required roles missing")
	}
	for name, sel := range map[string]bool{
		"preview":   b.Preview != nil,
		"annotated": b.Annotated != nil,
		"metadata":  b.Metadata != nil,
		"sensor":    b.SensorOut != nil,
	} {
		if !sel {
			t.Errorf("optional role %s not resolved", name)
		}
	}
}

func TestLocateLegacyIdentifiers(t *testing.T) {
	doc := mustLoad(t, legacyMarkup)
	b := locateFirst(t, doc)

	if b.FileInput == nil {
		t.Fatal("legacy file input not resolved")
	}
	if id, _ := b.FileInput.Attr("id"); id != "imageInput" {
		t.Errorf("resolved wrong file input: %q", id)
	}
	if id, _ := b.SensorOut.Attr("id"); id != "iotResult" {
		t.Errorf("resolved wrong sensor slot: %q", id)
	}
}

func TestLocateCreatesMissingStatus(t *testing.T) {
	markup := `<html><body><form>
	  <input type="file" class="image-input">
	  <button class="detect-btn">Detect</button>
	</form></body></html>`
	doc := mustLoad(t, markup)
	b := locateFirst(t, doc)

	if b.Status == nil {
		t.Fatal("status element was not created")
	}
	if !b.Status.HasClass("status-line") {
		t.Error("created status element missing status-line class")
	}

	// It must sit immediately after the trigger.
	doc.Update(func(root *goquery.Document) {
		next := Triggers(root).First().Next()
		if !next.HasClass("status-line") {
			t.Error("status element not inserted after trigger")
		}
	})
}

func TestLocateRequiresFileInput(t *testing.T) {
	markup := `<html><body><form><button class="detect-btn">Detect</button></form></body></html>`
	doc := mustLoad(t, markup)

	doc.Update(func(root *goquery.Document) {
		if _, err := Locate(root, Triggers(root).First()); err == nil {
			t.Error("expected error for control without file input")
		}
	})
}

func TestLocateScopesToOwnContainer(t *testing.T) {
	markup := `<html><body>
	<form id="a"><input type="file" class="image-input" name="a-input">
	  <button class="detect-btn">A</button><div class="status-line"></div></form>
	<form id="b"><input type="file" class="image-input" name="b-input">
	  <button class="detect-btn">B</button><div class="status-line"></div></form>
	</body></html>`
	doc := mustLoad(t, markup)

	doc.Update(func(root *goquery.Document) {
		second := Triggers(root).Eq(1)
		b, err := Locate(root, second)
		if err != nil {
			t.Fatalf("Locate failed: %v", err)
		}
		if name, _ := b.FileInput.Attr("name"); name != "b-input" {
			t.Errorf("binding escaped its container, resolved input %q", name)
		}
	})
}

func TestRefreshThumbnails(t *testing.T) {
	markup := `<html><body>
	  <img class="auto-thumb" src="/static/results/labels.jpg">
	  <img data-auto-refresh src="/static/results/plot.png?t=1">
	  <img src="/static/other.png">
	</body></html>`
	doc := mustLoad(t, markup)

	now := time.UnixMilli(1700000000000)
	if n := doc.RefreshThumbnails(now); n != 2 {
		t.Fatalf("refreshed %d thumbnails, want 2", n)
	}

	html, err := doc.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "labels.jpg?t=1700000000000") {
		t.Error("first thumbnail missing fresh timestamp")
	}
	if !strings.Contains(html, "plot.png?t=1700000000000") {
		t.Error("existing timestamp not replaced")
	}
	if strings.Contains(html, "other.png?") {
		t.Error("unrelated image was touched")
	}
}

func TestToggleTheme(t *testing.T) {
	doc := mustLoad(t, `<html><body></body></html>`)

	if !doc.ToggleTheme() {
		t.Error("first toggle should enable dark mode")
	}
	if doc.ToggleTheme() {
		t.Error("second toggle should disable dark mode")
	}
}
