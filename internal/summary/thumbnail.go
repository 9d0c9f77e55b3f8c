package summary

import "github.com/abhisek/sketchquiz/internal/canvas"

// Thumbnail renders the annotated image for a row, or "" when the
// classifier has not left one.
func Thumbnail(r Row, w, h int) string {
	if !r.ImageFound {
		return ""
	}
	s, err := canvas.LoadPreview(r.ImagePath, w, h)
	if err != nil {
		return ""
	}
	return s
}
