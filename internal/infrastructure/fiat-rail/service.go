package fiatrail

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
	"github.com/thanhpk/randstr"
)

const (
	DefaultSettlementDelay = 3 * time.Second

	StatusCompleted = "completed"

	referencePrefix = "FIAT-"
)

type service struct {
	delay time.Duration
}

// NewService returns a fiat rail that waits for the given delay before
// settling. It models the latency of an external banking rail and never
// fails, unless ctx is done while waiting. A negative delay falls back to the
// default one.
func NewService(delay time.Duration) ports.FiatRail {
	if delay < 0 {
		delay = DefaultSettlementDelay
	}
	return &service{delay}
}

func (s *service) SimulateDeposit(
	ctx context.Context, fiatAmount decimal.Decimal, currency string,
) (ports.FiatReceipt, error) {
	initiatedAt := time.Now().Unix()
	if err := s.wait(ctx); err != nil {
		return ports.FiatReceipt{}, err
	}

	receipt := ports.FiatReceipt{
		Status:         StatusCompleted,
		CreditedValue:  domain.EstimateValue(fiatAmount, currency),
		Rate:           domain.RateFor(currency),
		TransactionRef: newReference(),
		InitiatedAt:    initiatedAt,
		CompletedAt:    time.Now().Unix(),
	}
	log.Debugf(
		"fiat rail: received %s %s (%s)",
		domain.RoundFiat(fiatAmount), currency, receipt.TransactionRef,
	)
	return receipt, nil
}

func (s *service) SimulateWithdrawal(
	ctx context.Context, value decimal.Decimal, currency string,
) (ports.FiatReceipt, error) {
	initiatedAt := time.Now().Unix()
	if err := s.wait(ctx); err != nil {
		return ports.FiatReceipt{}, err
	}

	receipt := ports.FiatReceipt{
		Status:         StatusCompleted,
		FiatPayout:     domain.EstimateFiat(value, currency),
		Rate:           domain.WithdrawalRateFor(currency),
		ETA:            domain.DefaultSettlementETA,
		TransactionRef: newReference(),
		InitiatedAt:    initiatedAt,
		CompletedAt:    time.Now().Unix(),
	}
	log.Debugf(
		"fiat rail: paying out %s %s (%s)",
		receipt.FiatPayout, currency, receipt.TransactionRef,
	)
	return receipt, nil
}

func (s *service) wait(ctx context.Context) error {
	if s.delay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("fiat settlement interrupted: %w", ctx.Err())
	}
}

func newReference() string {
	return fmt.Sprintf(
		"%s%d-%s", referencePrefix, time.Now().UnixMilli(), randstr.Hex(4),
	)
}
