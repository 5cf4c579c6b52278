package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSessions struct {
	status SessionStatus
	err    error
}

func (s *fakeSessions) GetSession(context.Context, string) (SessionStatus, error) {
	return s.status, s.err
}

func TestReconciler_Verify(t *testing.T) {
	t.Parallel()

	t.Run("completed session verifies", func(t *testing.T) {
		r := NewReconciler(&fakeSessions{status: SessionStatus{Status: SessionCompleted, PaymentID: "pay-1"}})
		v := r.Verify(context.Background(), "sess-1")
		assert.True(t, v.Verified)
		assert.Equal(t, "pay-1", v.PaymentID)
		assert.False(t, v.Expired)
	})

	t.Run("expired session is terminal", func(t *testing.T) {
		r := NewReconciler(&fakeSessions{status: SessionStatus{Status: SessionExpired}})
		v := r.Verify(context.Background(), "sess-1")
		assert.False(t, v.Verified)
		assert.True(t, v.Expired)
	})

	t.Run("pending session is neither", func(t *testing.T) {
		r := NewReconciler(&fakeSessions{status: SessionStatus{Status: "PENDING"}})
		v := r.Verify(context.Background(), "sess-1")
		assert.False(t, v.Verified)
		assert.False(t, v.Expired)
	})

	t.Run("transport failure reads as unverified", func(t *testing.T) {
		r := NewReconciler(&fakeSessions{err: errors.New("connection refused")})
		v := r.Verify(context.Background(), "sess-1")
		assert.False(t, v.Verified)
		assert.False(t, v.Expired)
	})
}

func TestReconciler_AllowProbe(t *testing.T) {
	t.Parallel()

	r := NewReconciler(&fakeSessions{}, WithProbeInterval(50*time.Millisecond))

	assert.True(t, r.AllowProbe("ord-1"), "first probe should pass")
	assert.False(t, r.AllowProbe("ord-1"), "second probe inside the interval should be throttled")
	assert.True(t, r.AllowProbe("ord-2"), "other orders are throttled independently")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, r.AllowProbe("ord-1"), "probe should pass again after the interval")
}

func TestReconciler_Forget(t *testing.T) {
	t.Parallel()

	r := NewReconciler(&fakeSessions{}, WithProbeInterval(time.Hour))

	assert.True(t, r.AllowProbe("ord-1"))
	assert.False(t, r.AllowProbe("ord-1"))

	// Forgetting resets the limiter, so a recreated probe passes immediately.
	r.Forget("ord-1")
	assert.True(t, r.AllowProbe("ord-1"))
}
