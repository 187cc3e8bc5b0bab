package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/cost-planner/pkg/client/estimator"
	"github.com/rs/zerolog"
)

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// UpstreamError reports a failed estimator call as 502 Bad Gateway.
func UpstreamError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	zerolog.Ctx(r.Context()).Warn().
		Err(err).
		Msg(fallback)

	message := fallback
	var apiErr *estimator.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	http.Error(w, message, http.StatusBadGateway)
}
