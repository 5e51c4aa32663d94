package feed

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
)

// dateShape is the literal calendar-date shape. Values are not checked
// against a real calendar; 9999-99-99 passes.
var dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const pngType = "image/png"

// Validate checks a submission before any side effect happens.
// It never touches the network, the database, or the file system.
func Validate(sub models.Submission) error {
	if err := validation.Validate(sub.Author, validation.Required.Error("author is required")); err != nil {
		return fmt.Errorf("%w: user: %v", apperr.ErrValidation, err)
	}
	if err := validation.Validate(sub.Date,
		validation.Required.Error("date is required"),
		validation.Match(dateShape).Error("date must look like YYYY-MM-DD"),
	); err != nil {
		return fmt.Errorf("%w: date: %v", apperr.ErrValidation, err)
	}
	if len(sub.Image) > 0 && sub.ImageType != pngType {
		return fmt.Errorf("%w: image: must be a PNG", apperr.ErrValidation)
	}
	if err := validation.Validate(sub.Text, validation.Required.Error("text is required")); err != nil {
		return fmt.Errorf("%w: text: %v", apperr.ErrValidation, err)
	}
	return nil
}
