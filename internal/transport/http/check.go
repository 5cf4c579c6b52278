package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/collinsville22/pingmart/internal/naming"
)

const maxNamesPerCheck = 20

// NameChecker is the minimal interface needed to check name availability.
type NameChecker interface {
	CheckNames(ctx context.Context, names []string) []naming.CheckResult
}

// HandleCheckNames returns an HTTP handler for batch availability lookups.
// Lookups are best-effort: a name that cannot be resolved comes back
// unavailable rather than failing the batch.
func HandleCheckNames(svc NameChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req checkNamesRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if len(req.Names) == 0 {
			writeError(w, http.StatusBadRequest, codeInvalidName, "at least one name is required")
			return
		}
		if len(req.Names) > maxNamesPerCheck {
			req.Names = req.Names[:maxNamesPerCheck]
		}

		results := svc.CheckNames(r.Context(), req.Names)

		views := make([]checkResultView, 0, len(results))
		for _, res := range results {
			view := checkResultView{
				Domain:          res.Domain,
				Chain:           string(res.Chain),
				Available:       res.Available,
				Premium:         res.Premium,
				RegistrationURL: res.RegistrationURL,
			}
			if res.PriceUSD != nil {
				price := res.PriceUSD.StringFixed(2)
				view.PriceUSD = &price
			}
			views = append(views, view)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(checkNamesResponse{Results: views})
	}
}

type checkNamesRequest struct {
	Names []string `json:"names"`
}

type checkResultView struct {
	Domain          string  `json:"domain"`
	Chain           string  `json:"chain"`
	Available       bool    `json:"available"`
	Premium         bool    `json:"premium"`
	PriceUSD        *string `json:"price_usd,omitempty"`
	RegistrationURL string  `json:"registration_url,omitempty"`
}

type checkNamesResponse struct {
	Results []checkResultView `json:"results"`
}
