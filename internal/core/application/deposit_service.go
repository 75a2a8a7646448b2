package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
)

// DepositService is the on-ramp ledger. It exclusively owns the mutation of
// deposit records.
type DepositService interface {
	Create(
		ctx context.Context, userID string, fiatAmount decimal.Decimal,
		currency, destination string,
	) (*domain.Deposit, error)
	Confirm(
		ctx context.Context, depositID, destination string, settlement Settlement,
	) (*DepositResult, error)
	Quick(
		ctx context.Context, userID string, fiatAmount decimal.Decimal,
		currency, destination string, settlement Settlement,
	) (*DepositResult, error)
	Get(ctx context.Context, depositID string) (*domain.Deposit, error)
	GetForUser(
		ctx context.Context, userID string, page *domain.Page,
	) ([]domain.Deposit, error)
	Estimate(fiatAmount decimal.Decimal, currency string) DepositQuote
	Cancel(ctx context.Context, depositID string) (bool, error)
}

type depositService struct {
	repository domain.DepositRepository
	ledger     ports.LedgerClient
	fiatRail   ports.FiatRail
	events     eventPublisher

	locker *recordLocker
	// ids of deposits whose ledger leg is in progress. Read and written only
	// while holding the record lock.
	settling sync.Map
}

func NewDepositService(
	repoManager ports.RepoManager, ledger ports.LedgerClient,
	fiatRail ports.FiatRail, publisher ports.Publisher,
) (DepositService, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger client")
	}
	if fiatRail == nil {
		return nil, fmt.Errorf("missing fiat rail")
	}

	return &depositService{
		repository: repoManager.DepositRepository(),
		ledger:     ledger,
		fiatRail:   fiatRail,
		events:     eventPublisher{publisher},
		locker:     newRecordLocker(),
	}, nil
}

func (s *depositService) Create(
	ctx context.Context, userID string, fiatAmount decimal.Decimal,
	currency, destination string,
) (*domain.Deposit, error) {
	deposit, err := domain.NewDeposit(userID, fiatAmount, currency, destination)
	if err != nil {
		return nil, err
	}

	if err := s.repository.AddDeposit(ctx, deposit); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"deposit": deposit.ID,
		"user":    userID,
	}).Debugf(
		"created deposit of %s %s", deposit.FiatAmount, deposit.Currency,
	)
	return deposit, nil
}

func (s *depositService) Confirm(
	ctx context.Context, depositID, destination string, settlement Settlement,
) (*DepositResult, error) {
	if settlement == nil {
		settlement = ExternalCustody{}
	}

	deposit, err := s.startProcessing(ctx, depositID, destination)
	if err != nil {
		return depositFailure(deposit, err)
	}

	receipt, err := s.fiatRail.SimulateDeposit(
		ctx, deposit.FiatAmount, deposit.Currency,
	)
	if err != nil {
		return s.fail(ctx, depositID, fmt.Errorf("fiat leg: %w", err))
	}

	deposit, err = s.startSettling(ctx, depositID)
	if err != nil {
		return depositFailure(deposit, err)
	}
	defer s.settling.Delete(depositID)

	amount := deposit.CreditAmount()
	ref, err := settlement.Credit(
		ctx, s.ledger, deposit.DestinationAddress, amount,
	)
	if err != nil {
		log.WithError(err).WithField("deposit", depositID).Warnf(
			"%s credit failed", settlement.Name(),
		)
		return s.fail(ctx, depositID, err)
	}

	deposit, err = s.update(ctx, depositID, func(d *domain.Deposit) error {
		return d.Complete(amount, ref, receipt.TransactionRef)
	})
	if err != nil {
		return nil, err
	}
	s.events.depositEvent(ports.DepositCompletedTopic, deposit)

	log.WithField("deposit", depositID).Infof(
		"deposit completed, credited %s %s to %s",
		deposit.CreditedValue, NativeAssetCode, deposit.DestinationAddress,
	)
	return &DepositResult{
		Success: true,
		Deposit: deposit,
		Message: fmt.Sprintf(
			"Deposit completed: %s %s credited to %s",
			deposit.CreditedValue, NativeAssetCode, deposit.DestinationAddress,
		),
	}, nil
}

func (s *depositService) Quick(
	ctx context.Context, userID string, fiatAmount decimal.Decimal,
	currency, destination string, settlement Settlement,
) (*DepositResult, error) {
	// Nothing is stored if the deposit could not be confirmed right away.
	if strings.TrimSpace(destination) == "" {
		return depositFailure(nil, domain.ErrMissingAddress)
	}
	deposit, err := s.Create(ctx, userID, fiatAmount, currency, destination)
	if err != nil {
		return depositFailure(nil, err)
	}
	return s.Confirm(ctx, deposit.ID, destination, settlement)
}

func (s *depositService) Get(
	ctx context.Context, depositID string,
) (*domain.Deposit, error) {
	return s.repository.GetDeposit(ctx, depositID)
}

func (s *depositService) GetForUser(
	ctx context.Context, userID string, page *domain.Page,
) ([]domain.Deposit, error) {
	return s.repository.GetDepositsForUser(ctx, userID, page)
}

func (s *depositService) Estimate(
	fiatAmount decimal.Decimal, currency string,
) DepositQuote {
	currency = domain.EffectiveCurrency(currency)
	return DepositQuote{
		FiatAmount:     domain.RoundFiat(fiatAmount),
		Currency:       currency,
		Rate:           domain.RateFor(currency),
		EstimatedValue: domain.EstimateValue(fiatAmount, currency),
	}
}

// Cancel expires a created or processing deposit. It returns false without
// error if the deposit does not exist, is already final or failed, or if its
// ledger leg is in progress.
func (s *depositService) Cancel(
	ctx context.Context, depositID string,
) (bool, error) {
	unlock := s.locker.lock(depositID)
	defer unlock()

	if _, ok := s.settling.Load(depositID); ok {
		return false, nil
	}

	var deposit *domain.Deposit
	if err := s.repository.UpdateDeposit(
		ctx, depositID, func(d *domain.Deposit) (*domain.Deposit, error) {
			if err := d.Expire(); err != nil {
				return nil, err
			}
			deposit = d
			return d, nil
		},
	); err != nil {
		if errors.Is(err, domain.ErrDepositNotFound) ||
			errors.Is(err, domain.ErrDepositNotCancellable) {
			return false, nil
		}
		return false, err
	}

	s.events.depositEvent(ports.DepositExpiredTopic, deposit)
	return true, nil
}

func (s *depositService) startProcessing(
	ctx context.Context, depositID, destination string,
) (*domain.Deposit, error) {
	return s.update(ctx, depositID, func(d *domain.Deposit) error {
		return d.StartProcessing(destination)
	})
}

// startSettling checks that the deposit was not cancelled during the fiat leg
// and marks its ledger leg as in progress, making it no longer cancellable.
func (s *depositService) startSettling(
	ctx context.Context, depositID string,
) (*domain.Deposit, error) {
	unlock := s.locker.lock(depositID)
	defer unlock()

	deposit, err := s.repository.GetDeposit(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.IsExpired() {
		return deposit, domain.ErrDepositExpired
	}
	if !deposit.IsProcessing() {
		return deposit, domain.ErrDepositNotProcessing
	}

	s.settling.Store(depositID, struct{}{})
	return deposit, nil
}

func (s *depositService) fail(
	ctx context.Context, depositID string, cause error,
) (*DepositResult, error) {
	// The failure is persisted even if the caller went away.
	ctx = context.WithoutCancel(ctx)
	deposit, err := s.update(ctx, depositID, func(d *domain.Deposit) error {
		return d.Fail(cause.Error())
	})
	if err != nil {
		if errors.Is(err, domain.ErrDepositNotProcessing) {
			return depositFailure(deposit, cause)
		}
		return nil, err
	}

	s.events.depositEvent(ports.DepositFailedTopic, deposit)
	return depositFailure(deposit, cause)
}

// update applies fn to the deposit while holding its record lock. The
// returned deposit reflects the stored state, even if fn fails.
func (s *depositService) update(
	ctx context.Context, depositID string, fn func(d *domain.Deposit) error,
) (*domain.Deposit, error) {
	unlock := s.locker.lock(depositID)
	defer unlock()

	var deposit *domain.Deposit
	err := s.repository.UpdateDeposit(
		ctx, depositID, func(d *domain.Deposit) (*domain.Deposit, error) {
			deposit = d
			if err := fn(d); err != nil {
				return nil, err
			}
			return d, nil
		},
	)
	return deposit, err
}

// depositFailure turns a business error into a failed result. Unexpected
// errors are returned as they are.
func depositFailure(
	deposit *domain.Deposit, err error,
) (*DepositResult, error) {
	if !isBusinessError(err) {
		return nil, err
	}
	return &DepositResult{
		Success: false,
		Deposit: deposit,
		Kind:    kindOf(err),
		Message: depositFailureMessage(err),
	}, nil
}

func depositFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrDepositNotFound):
		return "Deposit not found"
	case errors.Is(err, domain.ErrDepositAlreadyCompleted):
		return "Deposit already completed"
	case errors.Is(err, domain.ErrDepositExpired):
		return "Deposit has expired"
	case errors.Is(err, domain.ErrDepositProcessing):
		return "Deposit is already being processed"
	default:
		return fmt.Sprintf("Deposit failed: %s", err)
	}
}
