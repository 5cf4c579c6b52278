package registry

import "context"

// AccountChecker reports whether a NEAR account exists; satisfied by the NEAR
// RPC client.
type AccountChecker interface {
	AccountExists(ctx context.Context, accountID string) (bool, error)
}

// NearReader answers .near availability: the name is available when no
// account with that identifier exists yet.
type NearReader struct {
	accounts AccountChecker
}

func NewNearReader(accounts AccountChecker) *NearReader {
	return &NearReader{accounts: accounts}
}

func (r *NearReader) Available(ctx context.Context, label string) (bool, bool, error) {
	exists, err := r.accounts.AccountExists(ctx, label+".near")
	if err != nil {
		return false, false, err
	}
	return !exists, premium(label), nil
}
