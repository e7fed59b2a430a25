package page

import (
	"fmt"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
)

// Selector candidates per role, tried in order: marker class first, then
// the legacy identifier older pages still use. The host markup is not
// guaranteed to follow a single convention.
const triggerSelector = ".detect-btn, #detectBtn"

var (
	fileInputCandidates = []string{"input.image-input", "#imageInput"}
	statusCandidates    = []string{".status-line", "#statusText"}
	previewCandidates   = []string{"img.preview-image", "#previewImg"}
	annotatedCandidates = []string{"img.annotated-image", "#outputImg"}
	metadataCandidates  = []string{".detect-meta", "#metaText"}
	sensorCandidates    = []string{".sensor-output", "#iotResult"}
)

const containerSelector = ".card, .panel, .upload-card"

// Binding ties one trigger to the elements a run reads and writes.
// FileInput and Status are always resolved; the rest may be nil, in which
// case the corresponding presentation step is silently skipped.
type Binding struct {
	Key       string
	Trigger   *goquery.Selection
	FileInput *goquery.Selection
	Status    *goquery.Selection
	Preview   *goquery.Selection
	Annotated *goquery.Selection
	Metadata  *goquery.Selection
	SensorOut *goquery.Selection

	inFlight atomic.Bool
}

// TryAcquire marks the binding in flight. It fails while a run on this
// control is still active, which is the re-entrancy guard.
func (b *Binding) TryAcquire() bool {
	return b.inFlight.CompareAndSwap(false, true)
}

func (b *Binding) Release() {
	b.inFlight.Store(false)
}

// InFlight reports whether a run currently owns the binding.
func (b *Binding) InFlight() bool {
	return b.inFlight.Load()
}

// Triggers returns every trigger candidate in the page. Caller holds the
// document lock.
func Triggers(root *goquery.Document) *goquery.Selection {
	return root.Find(triggerSelector)
}

// Locate resolves the binding for one trigger. The logical container is
// the nearest enclosing form, else the nearest card-like grouping, else
// the whole document. A missing status element is created right after the
// trigger; a missing file input makes the control unusable and is an
// error. Caller holds the document lock.
func Locate(root *goquery.Document, trigger *goquery.Selection) (*Binding, error) {
	container := trigger.Closest("form")
	if container.Length() == 0 {
		container = trigger.Closest(containerSelector)
	}
	if container.Length() == 0 {
		container = root.Selection
	}

	b := &Binding{
		Trigger:   trigger,
		FileInput: resolveRole(container, fileInputCandidates),
		Status:    resolveRole(container, statusCandidates),
		Preview:   resolveRole(container, previewCandidates),
		Annotated: resolveRole(container, annotatedCandidates),
		Metadata:  resolveRole(container, metadataCandidates),
		SensorOut: resolveRole(container, sensorCandidates),
	}

	if b.FileInput == nil {
		return nil, fmt.Errorf("no file input near trigger")
	}
	if b.Status == nil {
		trigger.AfterHtml(`<div class="status-line"></div>`)
		b.Status = trigger.Next()
	}
	return b, nil
}

func resolveRole(container *goquery.Selection, candidates []string) *goquery.Selection {
	for _, sel := range candidates {
		if found := container.Find(sel); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}
