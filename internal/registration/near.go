package registration

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/collinsville22/pingmart/internal/domain"
)

// nearStorageDeposit is 0.1 NEAR in yocto, attached to fund the new account.
var nearStorageDeposit, _ = new(big.Int).SetString("100000000000000000000000", 10)

// AccessKeyResolver resolves a NEAR account's first full-access public key.
type AccessKeyResolver interface {
	FirstPublicKey(ctx context.Context, accountID string) (string, error)
}

// NearAccountCreator submits create_account on the top-level registrar through
// the custody signer.
type NearAccountCreator interface {
	CreateAccount(ctx context.Context, newAccountID, publicKey string, depositYocto *big.Int) (txHash string, err error)
}

// NearDriver "registers" a .near name by creating the named account and
// installing the buyer's public key as its owner. There is no registry
// contract; the account itself is the registration.
type NearDriver struct {
	keys    AccessKeyResolver
	creator NearAccountCreator
}

func NewNearDriver(keys AccessKeyResolver, creator NearAccountCreator) *NearDriver {
	return &NearDriver{keys: keys, creator: creator}
}

func (d *NearDriver) Register(ctx context.Context, label, ownerAddress string, onProgress ProgressFunc) (string, error) {
	newAccountID := label + ".near"

	progress(onProgress, "Creating NEAR account...")

	publicKey, err := d.keys.FirstPublicKey(ctx, ownerAddress)
	if err != nil {
		return "", fmt.Errorf("resolve owner key: %w", err)
	}

	txHash, err := d.creator.CreateAccount(ctx, newAccountID, publicKey, nearStorageDeposit)
	if err != nil {
		if isAccountExists(err) {
			return "", fmt.Errorf("account %s: %w", newAccountID, domain.ErrNameTaken)
		}
		return "", fmt.Errorf("near account creation: %w", err)
	}

	return txHash, nil
}

func isAccountExists(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "AccountAlreadyExists") || strings.Contains(msg, "already exists")
}
