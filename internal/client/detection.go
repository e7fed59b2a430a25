package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/Dhruhi111/Tivaan-Vision/internal/domain/vision"
)

// uploadField is the form field name the detection service expects.
const uploadField = "file"

// DetectionClient uploads an image to the detection endpoint and
// normalizes the response. Failures are classified three ways: transport
// (vision.ErrTransport), non-success status (vision.ServerError) and
// undecodable body (vision.ErrProtocol).
type DetectionClient struct {
	endpoint string
	hc       *http.Client
	log      zerolog.Logger
}

// NewDetectionClient builds a client for the given detect URL. The
// http.Client carries no timeout on purpose: cancellation is the
// caller's context, and a hung upstream holds only its own control.
func NewDetectionClient(endpoint string, log zerolog.Logger) *DetectionClient {
	return &DetectionClient{
		endpoint: endpoint,
		hc:       &http.Client{},
		log:      log,
	}
}

func (c *DetectionClient) Detect(ctx context.Context, filename string, content []byte) (vision.DetectionResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if filename == "" {
		filename = "upload.jpg"
	}
	part, err := writer.CreateFormFile(uploadField, filename)
	if err != nil {
		return vision.DetectionResult{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		return vision.DetectionResult{}, fmt.Errorf("copy image data: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return vision.DetectionResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.hc.Do(req)
	if err != nil {
		return vision.DetectionResult{}, fmt.Errorf("%w: %s", vision.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return vision.DetectionResult{}, &vision.ServerError{Status: resp.StatusCode}
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return vision.DetectionResult{}, fmt.Errorf("%w: %s", vision.ErrProtocol, err)
	}

	res := vision.ResolveDetection(decoded)
	c.resolveImageRef(&res)

	c.log.Debug().
		Str("endpoint", c.endpoint).
		Bool("has_count", res.VehicleCount != nil).
		Bool("has_image", res.AnnotatedImageRef != nil).
		Msg("detection response normalized")
	return res, nil
}

// resolveImageRef makes a relative annotated-image reference absolute
// against the detection endpoint, so the console page can use it as-is.
// Best effort: unparseable refs are kept verbatim.
func (c *DetectionClient) resolveImageRef(res *vision.DetectionResult) {
	if res.AnnotatedImageRef == nil {
		return
	}
	ref, err := url.Parse(*res.AnnotatedImageRef)
	if err != nil || ref.IsAbs() {
		return
	}
	base, err := url.Parse(c.endpoint)
	if err != nil {
		return
	}
	abs := base.ResolveReference(ref).String()
	res.AnnotatedImageRef = &abs
}
