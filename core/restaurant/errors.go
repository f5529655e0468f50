package restaurant

import (
	"errors"

	"github.com/dmitrymomot/restokit/core/gateway"
)

const (
	msgRequiredFields = "name and address are required"
	msgMissingID      = "restaurant id is required"

	msgListFailed        = "could not fetch restaurants"
	msgGetFailed         = "could not fetch restaurant"
	msgCreateFailed      = "could not create restaurant"
	msgUpdateFailed      = "could not update restaurant"
	msgPatchFailed       = "could not update restaurant"
	msgDeleteFailed      = "could not delete restaurant"
	msgSearchFailed      = "search failed"
	msgQuickSearchFailed = "quick search failed"
	msgSimilarFailed     = "could not fetch similar restaurants"
)

// failure keeps gateway errors as they are and rewraps anything else,
// such as decode errors, with the operation's fallback message.
func failure(err error, fallback string) error {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return err
	}
	return gateway.WithMessage(err, fallback)
}

func missingID() error {
	return gateway.NewValidationError(msgMissingID, "id: field is required")
}
