package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
)

// WithdrawalService is the off-ramp ledger. It exclusively owns the mutation
// of withdrawal records.
type WithdrawalService interface {
	Create(
		ctx context.Context, userID string, value decimal.Decimal,
		currency, source string,
	) (*domain.Withdrawal, error)
	Confirm(
		ctx context.Context, withdrawalID, source string,
		settlement Settlement, treasury string,
	) (*WithdrawalResult, error)
	Quick(
		ctx context.Context, userID string, value decimal.Decimal,
		currency, source string, settlement Settlement,
	) (*WithdrawalResult, error)
	Get(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error)
	GetForUser(
		ctx context.Context, userID string, page *domain.Page,
	) ([]domain.Withdrawal, error)
	Estimate(value decimal.Decimal, currency string) WithdrawalQuote
	Cancel(ctx context.Context, withdrawalID string) (bool, error)
}

type withdrawalService struct {
	repository domain.WithdrawalRepository
	ledger     ports.LedgerClient
	fiatRail   ports.FiatRail
	events     eventPublisher
	locker     *recordLocker

	treasury   string
	minReserve decimal.Decimal
}

func NewWithdrawalService(
	repoManager ports.RepoManager, ledger ports.LedgerClient,
	fiatRail ports.FiatRail, publisher ports.Publisher,
	treasury string, minReserve decimal.Decimal,
) (WithdrawalService, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger client")
	}
	if fiatRail == nil {
		return nil, fmt.Errorf("missing fiat rail")
	}
	if minReserve.IsNegative() {
		return nil, fmt.Errorf("min reserve must not be negative")
	}

	return &withdrawalService{
		repository: repoManager.WithdrawalRepository(),
		ledger:     ledger,
		fiatRail:   fiatRail,
		events:     eventPublisher{publisher},
		locker:     newRecordLocker(),
		treasury:   treasury,
		minReserve: minReserve,
	}, nil
}

func (s *withdrawalService) Create(
	ctx context.Context, userID string, value decimal.Decimal,
	currency, source string,
) (*domain.Withdrawal, error) {
	withdrawal, err := domain.NewWithdrawal(userID, value, currency, source)
	if err != nil {
		return nil, err
	}

	if err := s.repository.AddWithdrawal(ctx, withdrawal); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"withdrawal": withdrawal.ID,
		"user":       userID,
	}).Debugf(
		"created withdrawal of %s %s", withdrawal.RequestedValue, NativeAssetCode,
	)
	return withdrawal, nil
}

func (s *withdrawalService) Confirm(
	ctx context.Context, withdrawalID, source string,
	settlement Settlement, treasury string,
) (*WithdrawalResult, error) {
	if settlement == nil {
		settlement = ExternalCustody{}
	}
	if treasury == "" {
		treasury = s.treasury
	}
	if _, ok := settlement.(DirectCustody); ok && treasury == "" {
		return withdrawalFailure(nil, ErrMissingTreasury)
	}

	withdrawal, err := s.update(ctx, withdrawalID, func(w *domain.Withdrawal) error {
		return w.StartProcessing(source)
	})
	if err != nil {
		return withdrawalFailure(withdrawal, err)
	}

	// A retried withdrawal whose debit already happened must not be debited
	// again.
	if !withdrawal.IsDebited() {
		if err := s.validateBalance(
			ctx, withdrawal.SourceAddress, withdrawal.RequestedValue,
		); err != nil {
			return s.fail(ctx, withdrawalID, err)
		}

		ref, err := settlement.Debit(
			ctx, s.ledger, withdrawal.SourceAddress, treasury,
			withdrawal.RequestedValue,
		)
		if err != nil {
			log.WithError(err).WithField("withdrawal", withdrawalID).Warnf(
				"%s debit failed", settlement.Name(),
			)
			return s.fail(ctx, withdrawalID, err)
		}

		withdrawal, err = s.update(ctx, withdrawalID, func(w *domain.Withdrawal) error {
			return w.MarkDebited(ref)
		})
		if err != nil {
			return nil, err
		}
	}

	receipt, err := s.fiatRail.SimulateWithdrawal(
		ctx, withdrawal.RequestedValue, withdrawal.Currency,
	)
	if err != nil {
		return s.fail(ctx, withdrawalID, fmt.Errorf("fiat leg: %w", err))
	}

	withdrawal, err = s.update(ctx, withdrawalID, func(w *domain.Withdrawal) error {
		return w.Complete(w.PayoutAmount(), receipt.TransactionRef)
	})
	if err != nil {
		return nil, err
	}
	s.events.withdrawalEvent(ports.WithdrawalCompletedTopic, withdrawal)

	log.WithField("withdrawal", withdrawalID).Infof(
		"withdrawal completed, debited %s %s from %s, paying out %s %s",
		withdrawal.RequestedValue, NativeAssetCode, withdrawal.SourceAddress,
		withdrawal.ActualFiatPayout, withdrawal.Currency,
	)
	return &WithdrawalResult{
		Success:    true,
		Withdrawal: withdrawal,
		Message: fmt.Sprintf(
			"Withdrawal completed: %s %s will be paid out in %s",
			withdrawal.ActualFiatPayout, withdrawal.Currency,
			withdrawal.EstimatedTimeToSettle,
		),
	}, nil
}

func (s *withdrawalService) Quick(
	ctx context.Context, userID string, value decimal.Decimal,
	currency, source string, settlement Settlement,
) (*WithdrawalResult, error) {
	if strings.TrimSpace(source) == "" {
		return withdrawalFailure(nil, domain.ErrMissingAddress)
	}
	withdrawal, err := s.Create(ctx, userID, value, currency, source)
	if err != nil {
		return withdrawalFailure(nil, err)
	}
	return s.Confirm(ctx, withdrawal.ID, source, settlement, "")
}

func (s *withdrawalService) Get(
	ctx context.Context, withdrawalID string,
) (*domain.Withdrawal, error) {
	return s.repository.GetWithdrawal(ctx, withdrawalID)
}

func (s *withdrawalService) GetForUser(
	ctx context.Context, userID string, page *domain.Page,
) ([]domain.Withdrawal, error) {
	return s.repository.GetWithdrawalsForUser(ctx, userID, page)
}

func (s *withdrawalService) Estimate(
	value decimal.Decimal, currency string,
) WithdrawalQuote {
	currency = domain.EffectiveCurrency(currency)
	return WithdrawalQuote{
		Value:               domain.RoundValue(value),
		Currency:            currency,
		Rate:                domain.WithdrawalRateFor(currency),
		EstimatedFiatPayout: domain.EstimateFiat(value, currency),
		ETA:                 domain.DefaultSettlementETA,
	}
}

// Cancel is allowed only for withdrawals still in created status. Anything
// else, including a missing withdrawal, returns false without error.
func (s *withdrawalService) Cancel(
	ctx context.Context, withdrawalID string,
) (bool, error) {
	withdrawal, err := s.update(ctx, withdrawalID, func(w *domain.Withdrawal) error {
		return w.Cancel()
	})
	if err != nil {
		if errors.Is(err, domain.ErrWithdrawalNotFound) ||
			errors.Is(err, domain.ErrWithdrawalNotCancellable) {
			return false, nil
		}
		return false, err
	}

	s.events.withdrawalEvent(ports.WithdrawalCancelledTopic, withdrawal)
	return true, nil
}

// validateBalance makes sure the source account can afford the debit and
// still hold the minimum reserve afterwards.
func (s *withdrawalService) validateBalance(
	ctx context.Context, source string, amount decimal.Decimal,
) error {
	balance, err := s.ledger.GetBalance(ctx, source)
	if err != nil {
		return err
	}
	if !balance.Exists {
		return ErrSourceAccountNotFound
	}

	required := amount.Add(s.minReserve)
	if balance.NativeBalance.LessThan(required) {
		return fmt.Errorf(
			"%w: available %s %s, required %s %s (including %s reserve)",
			ErrInsufficientBalance, balance.NativeBalance, NativeAssetCode,
			required, NativeAssetCode, s.minReserve,
		)
	}
	return nil
}

func (s *withdrawalService) fail(
	ctx context.Context, withdrawalID string, cause error,
) (*WithdrawalResult, error) {
	// The failure is persisted even if the caller went away.
	ctx = context.WithoutCancel(ctx)
	withdrawal, err := s.update(ctx, withdrawalID, func(w *domain.Withdrawal) error {
		return w.Fail(cause.Error())
	})
	if err != nil {
		if errors.Is(err, domain.ErrWithdrawalNotProcessing) {
			return withdrawalFailure(withdrawal, cause)
		}
		return nil, err
	}

	s.events.withdrawalEvent(ports.WithdrawalFailedTopic, withdrawal)
	return withdrawalFailure(withdrawal, cause)
}

func (s *withdrawalService) update(
	ctx context.Context, withdrawalID string,
	fn func(w *domain.Withdrawal) error,
) (*domain.Withdrawal, error) {
	unlock := s.locker.lock(withdrawalID)
	defer unlock()

	var withdrawal *domain.Withdrawal
	err := s.repository.UpdateWithdrawal(
		ctx, withdrawalID, func(w *domain.Withdrawal) (*domain.Withdrawal, error) {
			withdrawal = w
			if err := fn(w); err != nil {
				return nil, err
			}
			return w, nil
		},
	)
	return withdrawal, err
}

func withdrawalFailure(
	withdrawal *domain.Withdrawal, err error,
) (*WithdrawalResult, error) {
	if !isBusinessError(err) {
		return nil, err
	}
	return &WithdrawalResult{
		Success:    false,
		Withdrawal: withdrawal,
		Kind:       kindOf(err),
		Message:    withdrawalFailureMessage(err),
	}, nil
}

func withdrawalFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrWithdrawalNotFound):
		return "Withdrawal not found"
	case errors.Is(err, domain.ErrWithdrawalAlreadyCompleted):
		return "Withdrawal already completed"
	case errors.Is(err, domain.ErrWithdrawalCancelled):
		return "Withdrawal has been cancelled"
	case errors.Is(err, domain.ErrWithdrawalProcessing):
		return "Withdrawal is already being processed"
	default:
		return fmt.Sprintf("Withdrawal failed: %s", err)
	}
}
