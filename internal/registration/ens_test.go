package registration

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/collinsville22/pingmart/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeENSController struct {
	rentPrice *big.Int
	commitErr error
	regErr    error

	committed   bool
	registered  bool
	mined       []string
	regValue    *big.Int
	regSecret   [32]byte
	commitInput [32]byte
}

func (c *fakeENSController) MakeCommitment(_ context.Context, label, owner string, durationSec int64, secret [32]byte, resolver string) ([32]byte, error) {
	c.regSecret = secret
	var out [32]byte
	out[0] = 0xc0
	return out, nil
}

func (c *fakeENSController) Commit(_ context.Context, commitment [32]byte) (string, error) {
	if c.commitErr != nil {
		return "", c.commitErr
	}
	c.committed = true
	c.commitInput = commitment
	return "0xcommit", nil
}

func (c *fakeENSController) RentPrice(context.Context, string, int64) (*big.Int, error) {
	return c.rentPrice, nil
}

func (c *fakeENSController) Register(_ context.Context, label, owner string, durationSec int64, secret [32]byte, resolver string, value *big.Int) (string, error) {
	if c.regErr != nil {
		return "", c.regErr
	}
	if secret != c.regSecret {
		return "", errors.New("reveal secret does not match commitment")
	}
	c.registered = true
	c.regValue = value
	return "0xregister", nil
}

func (c *fakeENSController) WaitMined(_ context.Context, txHash string) error {
	c.mined = append(c.mined, txHash)
	return nil
}

func TestENSDriver_Register(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("commit, mature, reveal", func(t *testing.T) {
		controller := &fakeENSController{rentPrice: big.NewInt(1000)}
		clk := clock.NewFixed(start)
		driver := NewENSDriver(controller, clk)

		var steps []string
		tx, err := driver.Register(context.Background(), "pulse", "0xowner", func(step string) {
			steps = append(steps, step)
		})
		require.NoError(t, err)
		assert.Equal(t, "0xregister", tx)

		assert.True(t, controller.committed)
		assert.True(t, controller.registered)
		assert.Equal(t, []string{"0xcommit", "0xregister"}, controller.mined)

		// 10% buffer over the quoted rent price.
		assert.Equal(t, big.NewInt(1100), controller.regValue)

		// The maturation wait moved the injected clock.
		assert.Equal(t, start.Add(65*time.Second), clk.Now())

		assert.Len(t, steps, 4)
	})

	t.Run("commit failure aborts before the wait", func(t *testing.T) {
		controller := &fakeENSController{rentPrice: big.NewInt(1000), commitErr: errors.New("nonce too low")}
		clk := clock.NewFixed(start)
		driver := NewENSDriver(controller, clk)

		_, err := driver.Register(context.Background(), "pulse", "0xowner", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ens commit")
		assert.Equal(t, start, clk.Now())
	})

	t.Run("register failure surfaces", func(t *testing.T) {
		controller := &fakeENSController{rentPrice: big.NewInt(1000), regErr: errors.New("reverted")}
		driver := NewENSDriver(controller, clock.NewFixed(start))

		_, err := driver.Register(context.Background(), "pulse", "0xowner", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ens register")
	})
}

func TestWithBuffer(t *testing.T) {
	t.Parallel()

	assert.Equal(t, big.NewInt(110), withBuffer(big.NewInt(100)))
	assert.Equal(t, big.NewInt(0), withBuffer(big.NewInt(0)))
	// Integer division floors.
	assert.Equal(t, big.NewInt(1), withBuffer(big.NewInt(1)))
}
