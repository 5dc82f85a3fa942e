package http

import (
	"net/http"

	apperrors "stayd/pkg/errors"
	"stayd/pkg/model"
)

// ExtractDateWindow reads the from/to query parameters as ISO dates and
// returns them as a half-open interval.
func ExtractDateWindow(r *http.Request) (model.DateInterval, error) {
	query := r.URL.Query()

	from := query.Get("from")
	to := query.Get("to")
	if from == "" || to == "" {
		return model.DateInterval{}, apperrors.InvalidInput("from and to query parameters are required")
	}

	window, err := model.ParseDateInterval(from, to)
	if err != nil {
		return model.DateInterval{}, apperrors.InvalidInput(err.Error())
	}
	return window, nil
}
