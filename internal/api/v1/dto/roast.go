package dto

// RoastRequestDTO is the body of POST /roasts.
type RoastRequestDTO struct {
	URL string `json:"url" validate:"required"`
}

// RoastResponseDTO is returned for a completed roast.
type RoastResponseDTO struct {
	ScreenshotURL  string   `json:"screenshot_url"`
	RoastPoints    []string `json:"roast"`
	FixSuggestions []string `json:"fixSuggestions"`
	OverallScore   int      `json:"overallScore"`
	Verdict        string   `json:"verdict"`
}
