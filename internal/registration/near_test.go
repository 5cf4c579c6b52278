package registration

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyResolver struct {
	key string
	err error
}

func (r *fakeKeyResolver) FirstPublicKey(context.Context, string) (string, error) {
	return r.key, r.err
}

type fakeAccountCreator struct {
	txHash string
	err    error

	lastAccountID string
	lastKey       string
	lastDeposit   *big.Int
}

func (c *fakeAccountCreator) CreateAccount(_ context.Context, newAccountID, publicKey string, depositYocto *big.Int) (string, error) {
	c.lastAccountID = newAccountID
	c.lastKey = publicKey
	c.lastDeposit = depositYocto
	return c.txHash, c.err
}

func TestNearDriver_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates the named account with the buyer's key", func(t *testing.T) {
		creator := &fakeAccountCreator{txHash: "near-tx"}
		driver := NewNearDriver(&fakeKeyResolver{key: "ed25519:abc"}, creator)

		tx, err := driver.Register(context.Background(), "pulse", "buyer.near", nil)
		require.NoError(t, err)
		assert.Equal(t, "near-tx", tx)
		assert.Equal(t, "pulse.near", creator.lastAccountID)
		assert.Equal(t, "ed25519:abc", creator.lastKey)
		assert.Equal(t, nearStorageDeposit, creator.lastDeposit)
	})

	t.Run("existing account maps to name taken", func(t *testing.T) {
		creator := &fakeAccountCreator{err: errors.New("AccountAlreadyExists: pulse.near")}
		driver := NewNearDriver(&fakeKeyResolver{key: "ed25519:abc"}, creator)

		_, err := driver.Register(context.Background(), "pulse", "buyer.near", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNameTaken)
	})

	t.Run("missing owner key aborts before creation", func(t *testing.T) {
		creator := &fakeAccountCreator{txHash: "near-tx"}
		driver := NewNearDriver(&fakeKeyResolver{err: errors.New("could not fetch public key")}, creator)

		_, err := driver.Register(context.Background(), "pulse", "buyer.near", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolve owner key")
		assert.Empty(t, creator.lastAccountID)
	})
}

func TestRegistry_For(t *testing.T) {
	t.Parallel()

	driver := NewNearDriver(&fakeKeyResolver{}, &fakeAccountCreator{})
	registry := Registry{domain.ChainNear: driver}

	got, ok := registry.For(domain.ChainNear)
	assert.True(t, ok)
	assert.Equal(t, driver, got)

	_, ok = registry.For(domain.ChainEthereum)
	assert.False(t, ok)
}
