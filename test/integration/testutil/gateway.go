//go:build integration

package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/bingoo/platform/internal/provider"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrGatewayDown is returned by FakeGateway while it is set to fail.
var ErrGatewayDown = errors.New("fake gateway unavailable")

// FakeGateway stands in for PayPal. Orders always succeed unless Fail is set;
// captures complete unless Decline is set.
type FakeGateway struct {
	mu       sync.Mutex
	fail     bool
	decline  bool
	captures int
}

// NewFakeGateway creates a gateway that accepts everything.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (g *FakeGateway) Name() string { return "fake" }

// SetFail makes every subsequent call return ErrGatewayDown.
func (g *FakeGateway) SetFail(fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = fail
}

// SetDecline makes captures report a non-completed outcome.
func (g *FakeGateway) SetDecline(decline bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.decline = decline
}

// Captures returns how many capture calls reached the gateway.
func (g *FakeGateway) Captures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captures
}

func (g *FakeGateway) CreateOrder(_ context.Context, referenceID string, _ decimal.Decimal, _ string) (*provider.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, ErrGatewayDown
	}
	return &provider.Order{
		ID:         "ORDER-" + referenceID,
		Status:     "CREATED",
		ApproveURL: "https://example.test/approve/" + referenceID,
	}, nil
}

func (g *FakeGateway) CaptureOrder(_ context.Context, orderID string) (*provider.CaptureResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captures++
	if g.fail {
		return nil, ErrGatewayDown
	}
	if g.decline {
		return &provider.CaptureResult{OrderID: orderID, Status: "DECLINED"}, nil
	}
	return &provider.CaptureResult{
		OrderID:   orderID,
		CaptureID: "CAP-" + uuid.NewString()[:8],
		Status:    "COMPLETED",
		Completed: true,
	}, nil
}
