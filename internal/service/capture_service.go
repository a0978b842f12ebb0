package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Screenshot viewport: a common desktop width, clipped to roughly two viewports
// of height so the critique sees more than the fold.
const (
	captureWidth  = 1440
	captureHeight = 2000
)

// ErrTargetUnreachable is returned when the capture service could not load the
// requested page.
var ErrTargetUnreachable = errors.New("target_unreachable")

// CaptureService renders a page screenshot via the external capture service.
type CaptureService interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

type captureService struct {
	client  *http.Client
	baseURL string
}

// NewCaptureService creates a client for the screenshot capture service.
func NewCaptureService(baseURL string, timeout time.Duration) CaptureService {
	return &captureService{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (s *captureService) Capture(ctx context.Context, url string) ([]byte, error) {
	reqBody := map[string]interface{}{
		"url":    url,
		"width":  captureWidth,
		"height": captureHeight,
	}
	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal capture request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/screenshot", bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture service request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		// The capture service reports page-load failures as client errors.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, ErrTargetUnreachable
		}
		return nil, fmt.Errorf("capture service returned HTTP %d", resp.StatusCode)
	}

	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot: %w", err)
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("capture service returned empty screenshot")
	}
	return png, nil
}
