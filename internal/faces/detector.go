package faces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"photo-index/internal/filesystem"
	"photo-index/internal/mediatypes"
	"photo-index/internal/metrics"
)

const defaultDetectorURL = "http://localhost:5000"

// Point is a pixel coordinate.
type Point struct {
	X float64
	Y float64
}

// Box is a face bounding box in pixels, origin top-left.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Face is one detection. Eyes are nil when the detector could not place them.
type Face struct {
	Box        Box
	LeftEye    *Point
	RightEye   *Point
	Confidence float64
}

// HasEyes reports whether both eyes were located.
func (f Face) HasEyes() bool {
	return f.LeftEye != nil && f.RightEye != nil
}

// Detector finds faces in an image file.
type Detector interface {
	Detect(ctx context.Context, path string) ([]Face, error)
}

// Client calls a detection service over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new face detection client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type wireFace struct {
	Box        Box       `json:"box"`
	LeftEye    []float64 `json:"left_eye"`
	RightEye   []float64 `json:"right_eye"`
	Confidence float64   `json:"confidence"`
}

type detectResponse struct {
	Faces []wireFace `json:"faces"`
}

func toPoint(v []float64) *Point {
	if len(v) < 2 {
		return nil
	}
	return &Point{X: v[0], Y: v[1]}
}

// Detect implements Detector.
func (c *Client) Detect(ctx context.Context, path string) ([]Face, error) {
	start := time.Now()
	faces, err := c.detect(ctx, path)
	metrics.FaceDetectionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FaceDetectionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.FaceDetectionsTotal.WithLabelValues("success").Inc()
	return faces, nil
}

func (c *Client) detect(ctx context.Context, path string) ([]Face, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	body, err := c.postMultipartImage(ctx, "/detect", filepath.Base(path), data)
	if err != nil {
		return nil, err
	}

	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	faces := make([]Face, 0, len(parsed.Faces))
	for _, wf := range parsed.Faces {
		faces = append(faces, Face{
			Box:        wf.Box,
			LeftEye:    toPoint(wf.LeftEye),
			RightEye:   toPoint(wf.RightEye),
			Confidence: wf.Confidence,
		})
	}
	return faces, nil
}

// postMultipartImage posts the image as the "file" part with detection
// forcing disabled.
func (c *Client) postMultipartImage(ctx context.Context, endpoint, name string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", mediatypes.GetMimeType(mediatypes.Ext(name)))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.WriteField("enforce_detection", "false"); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
