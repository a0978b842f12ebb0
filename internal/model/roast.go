package model

import "time"

// Critique is the structured verdict returned by the critique model.
type Critique struct {
	RoastPoints    []string `json:"roastPoints"`
	FixSuggestions []string `json:"fixSuggestions"`
	OverallScore   int      `json:"overallScore"`
	Verdict        string   `json:"verdict"`
}

// Roast is the audit record of one completed roast. Write-only from the service's
// point of view.
type Roast struct {
	UserID        string    `db:"user_id" json:"user_id"`
	URL           string    `db:"url" json:"url"`
	ScreenshotURL string    `db:"screenshot_url" json:"screenshot_url"`
	Critique      Critique  `json:"critique"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
