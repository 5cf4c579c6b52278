package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const snsResolveTimeout = 8 * time.Second

// SNSReader answers .sol availability through the SNS proxy's resolver: a
// name that resolves is taken.
type SNSReader struct {
	proxyURL string
	http     *http.Client
}

func NewSNSReader(proxyURL string) *SNSReader {
	return &SNSReader{proxyURL: proxyURL, http: &http.Client{}}
}

type snsResolveResponse struct {
	S      string `json:"s"`
	Result string `json:"result"`
}

func (r *SNSReader) Available(ctx context.Context, label string) (bool, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, snsResolveTimeout)
	defer cancel()

	endpoint := r.proxyURL + "/resolve/" + url.PathEscape(label)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, false, err
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return false, false, fmt.Errorf("sns resolve: %w", err)
	}
	defer resp.Body.Close()

	var out snsResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, false, fmt.Errorf("decode sns resolve response: %w", err)
	}

	registered := out.S == "ok" && out.Result != ""
	return !registered, premium(label), nil
}
