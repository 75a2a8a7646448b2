package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/pkg/stats"
)

// RampService is the entry point of every caller facing surface. It coerces
// raw inputs, picks the settlement strategy, and turns everything, unexpected
// errors included, into results. It holds no state.
type RampService interface {
	CreateDeposit(ctx context.Context, req DepositRequest) *DepositResult
	ConfirmDeposit(ctx context.Context, req ConfirmDepositRequest) *DepositResult
	QuickDeposit(ctx context.Context, req DepositRequest) *DepositResult
	GetDeposit(ctx context.Context, depositID string) *DepositResult
	EstimateDeposit(amount, currency string) *QuoteResult
	CancelDeposit(ctx context.Context, depositID string) *CancelResult

	CreateWithdrawal(ctx context.Context, req WithdrawalRequest) *WithdrawalResult
	ConfirmWithdrawal(
		ctx context.Context, req ConfirmWithdrawalRequest,
	) *WithdrawalResult
	QuickWithdrawal(ctx context.Context, req WithdrawalRequest) *WithdrawalResult
	GetWithdrawal(ctx context.Context, withdrawalID string) *WithdrawalResult
	EstimateWithdrawal(value, currency string) *QuoteResult
	CancelWithdrawal(ctx context.Context, withdrawalID string) *CancelResult

	ConnectAddress(ctx context.Context, userID, address string) *AddressResult
	ConnectedAddress(ctx context.Context, userID string) *AddressResult

	Rates() []RateInfo
	History(ctx context.Context, userID string, page *domain.Page) *HistoryResult
}

type rampService struct {
	deposits       DepositService
	withdrawals    WithdrawalService
	addressBook    domain.AddressBookRepository
	strictCurrency bool
}

// NewRampService returns the orchestrator. Requests that carry no ledger
// address are settled with the address the user connected, if any.
func NewRampService(
	deposits DepositService, withdrawals WithdrawalService,
	addressBook domain.AddressBookRepository, strictCurrency bool,
) (RampService, error) {
	if deposits == nil {
		return nil, fmt.Errorf("missing deposit service")
	}
	if withdrawals == nil {
		return nil, fmt.Errorf("missing withdrawal service")
	}
	if addressBook == nil {
		return nil, fmt.Errorf("missing address book")
	}
	return &rampService{deposits, withdrawals, addressBook, strictCurrency}, nil
}

func (s *rampService) CreateDeposit(
	ctx context.Context, req DepositRequest,
) (result *DepositResult) {
	defer observeDeposit("create_deposit", time.Now(), &result)

	amount, currency, err := s.coerce(req.Amount, req.Currency)
	if err != nil {
		return s.depositResult(depositFailure(nil, err))
	}

	userID := strings.TrimSpace(req.UserID)
	destination, err := s.optionalAddress(ctx, userID, req.DestinationAddress)
	if err != nil {
		return s.depositResult(depositFailure(nil, err))
	}

	deposit, err := s.deposits.Create(ctx, userID, amount, currency, destination)
	if err != nil {
		return s.depositResult(depositFailure(nil, err))
	}
	return &DepositResult{
		Success: true,
		Deposit: deposit,
		Message: fmt.Sprintf(
			"Deposit %s created: %s %s for an estimated %s %s",
			deposit.ID, deposit.FiatAmount, deposit.Currency,
			deposit.EstimatedValue, NativeAssetCode,
		),
	}
}

func (s *rampService) ConfirmDeposit(
	ctx context.Context, req ConfirmDepositRequest,
) (result *DepositResult) {
	defer observeDeposit("confirm_deposit", time.Now(), &result)

	return s.depositResult(s.deposits.Confirm(
		ctx, strings.TrimSpace(req.DepositID),
		strings.TrimSpace(req.DestinationAddress),
		SettlementFor(req.Credential),
	))
}

func (s *rampService) QuickDeposit(
	ctx context.Context, req DepositRequest,
) (result *DepositResult) {
	defer observeDeposit("quick_deposit", time.Now(), &result)

	amount, currency, err := s.coerce(req.Amount, req.Currency)
	if err != nil {
		return s.depositResult(depositFailure(nil, err))
	}

	userID := strings.TrimSpace(req.UserID)
	destination, err := s.requiredAddress(ctx, userID, req.DestinationAddress)
	if err != nil {
		return s.depositResult(depositFailure(nil, err))
	}

	return s.depositResult(s.deposits.Quick(
		ctx, userID, amount, currency, destination, SettlementFor(req.Credential),
	))
}

func (s *rampService) GetDeposit(
	ctx context.Context, depositID string,
) *DepositResult {
	deposit, err := s.deposits.Get(ctx, strings.TrimSpace(depositID))
	if err != nil {
		return s.depositResult(depositFailure(nil, err))
	}
	return &DepositResult{
		Success: true,
		Deposit: deposit,
		Message: fmt.Sprintf("Deposit %s is %s", deposit.ID, deposit.Status),
	}
}

func (s *rampService) EstimateDeposit(amount, currency string) *QuoteResult {
	fiatAmount, currency, err := s.coerce(amount, currency)
	if err != nil {
		return quoteFailure(err)
	}

	quote := s.deposits.Estimate(fiatAmount, currency)
	return &QuoteResult{
		Success:      true,
		DepositQuote: &quote,
		Message: fmt.Sprintf(
			"%s %s buys an estimated %s %s",
			quote.FiatAmount, quote.Currency, quote.EstimatedValue, NativeAssetCode,
		),
	}
}

func (s *rampService) CancelDeposit(
	ctx context.Context, depositID string,
) *CancelResult {
	ok, err := s.deposits.Cancel(ctx, strings.TrimSpace(depositID))
	return cancelResult("Deposit", ok, err)
}

func (s *rampService) CreateWithdrawal(
	ctx context.Context, req WithdrawalRequest,
) (result *WithdrawalResult) {
	defer observeWithdrawal("create_withdrawal", time.Now(), &result)

	value, currency, err := s.coerce(req.Value, req.Currency)
	if err != nil {
		return s.withdrawalResult(withdrawalFailure(nil, err))
	}

	userID := strings.TrimSpace(req.UserID)
	source, err := s.optionalAddress(ctx, userID, req.SourceAddress)
	if err != nil {
		return s.withdrawalResult(withdrawalFailure(nil, err))
	}

	withdrawal, err := s.withdrawals.Create(ctx, userID, value, currency, source)
	if err != nil {
		return s.withdrawalResult(withdrawalFailure(nil, err))
	}
	return &WithdrawalResult{
		Success:    true,
		Withdrawal: withdrawal,
		Message: fmt.Sprintf(
			"Withdrawal %s created: %s %s for an estimated %s %s",
			withdrawal.ID, withdrawal.RequestedValue, NativeAssetCode,
			withdrawal.EstimatedFiatPayout, withdrawal.Currency,
		),
	}
}

func (s *rampService) ConfirmWithdrawal(
	ctx context.Context, req ConfirmWithdrawalRequest,
) (result *WithdrawalResult) {
	defer observeWithdrawal("confirm_withdrawal", time.Now(), &result)

	return s.withdrawalResult(s.withdrawals.Confirm(
		ctx, strings.TrimSpace(req.WithdrawalID),
		strings.TrimSpace(req.SourceAddress), SettlementFor(req.Credential),
		strings.TrimSpace(req.TreasuryAddress),
	))
}

func (s *rampService) QuickWithdrawal(
	ctx context.Context, req WithdrawalRequest,
) (result *WithdrawalResult) {
	defer observeWithdrawal("quick_withdrawal", time.Now(), &result)

	value, currency, err := s.coerce(req.Value, req.Currency)
	if err != nil {
		return s.withdrawalResult(withdrawalFailure(nil, err))
	}

	userID := strings.TrimSpace(req.UserID)
	source, err := s.requiredAddress(ctx, userID, req.SourceAddress)
	if err != nil {
		return s.withdrawalResult(withdrawalFailure(nil, err))
	}

	return s.withdrawalResult(s.withdrawals.Quick(
		ctx, userID, value, currency, source, SettlementFor(req.Credential),
	))
}

func (s *rampService) GetWithdrawal(
	ctx context.Context, withdrawalID string,
) *WithdrawalResult {
	withdrawal, err := s.withdrawals.Get(ctx, strings.TrimSpace(withdrawalID))
	if err != nil {
		return s.withdrawalResult(withdrawalFailure(nil, err))
	}
	return &WithdrawalResult{
		Success:    true,
		Withdrawal: withdrawal,
		Message: fmt.Sprintf(
			"Withdrawal %s is %s", withdrawal.ID, withdrawal.Status,
		),
	}
}

func (s *rampService) EstimateWithdrawal(value, currency string) *QuoteResult {
	amount, currency, err := s.coerce(value, currency)
	if err != nil {
		return quoteFailure(err)
	}

	quote := s.withdrawals.Estimate(amount, currency)
	return &QuoteResult{
		Success:         true,
		WithdrawalQuote: &quote,
		Message: fmt.Sprintf(
			"%s %s pays out an estimated %s %s in %s",
			quote.Value, NativeAssetCode, quote.EstimatedFiatPayout, quote.Currency,
			quote.ETA,
		),
	}
}

func (s *rampService) CancelWithdrawal(
	ctx context.Context, withdrawalID string,
) *CancelResult {
	ok, err := s.withdrawals.Cancel(ctx, strings.TrimSpace(withdrawalID))
	return cancelResult("Withdrawal", ok, err)
}

func (s *rampService) ConnectAddress(
	ctx context.Context, userID, address string,
) *AddressResult {
	userID = strings.TrimSpace(userID)
	address = strings.TrimSpace(address)
	if userID == "" {
		return addressFailure(domain.ErrMissingUserID)
	}
	if address == "" {
		return addressFailure(domain.ErrMissingAddress)
	}

	if err := s.addressBook.SetAddress(ctx, userID, address); err != nil {
		return addressFailure(err)
	}
	log.WithField("user", userID).Debugf("connected address %s", address)
	return &AddressResult{
		Success: true,
		UserID:  userID,
		Address: address,
		Message: fmt.Sprintf("Connected address %s", address),
	}
}

func (s *rampService) ConnectedAddress(
	ctx context.Context, userID string,
) *AddressResult {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return addressFailure(domain.ErrMissingUserID)
	}

	address, err := s.addressBook.GetAddress(ctx, userID)
	if err != nil {
		return addressFailure(err)
	}
	return &AddressResult{
		Success: true,
		UserID:  userID,
		Address: address,
		Message: fmt.Sprintf("Connected address %s", address),
	}
}

func (s *rampService) Rates() []RateInfo {
	currencies := domain.SupportedCurrencies()
	rates := make([]RateInfo, 0, len(currencies))
	for _, currency := range currencies {
		rates = append(rates, RateInfo{
			Currency:    currency,
			FiatToValue: domain.RateFor(currency),
			ValueToFiat: domain.WithdrawalRateFor(currency),
		})
	}
	return rates
}

func (s *rampService) History(
	ctx context.Context, userID string, page *domain.Page,
) *HistoryResult {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return &HistoryResult{
			Kind:    KindValidationFailure,
			Message: domain.ErrMissingUserID.Error(),
		}
	}

	deposits, err := s.deposits.GetForUser(ctx, userID, page)
	if err != nil {
		return historyFailure(err)
	}
	withdrawals, err := s.withdrawals.GetForUser(ctx, userID, page)
	if err != nil {
		return historyFailure(err)
	}

	if deposits == nil {
		deposits = []domain.Deposit{}
	}
	if withdrawals == nil {
		withdrawals = []domain.Withdrawal{}
	}
	return &HistoryResult{
		Success:     true,
		Deposits:    deposits,
		Withdrawals: withdrawals,
	}
}

// coerce parses the raw amount and resolves the currency, defaulting to USD
// when missing.
func (s *rampService) coerce(
	rawAmount, rawCurrency string,
) (decimal.Decimal, string, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return decimal.Zero, "", err
	}

	currency := domain.NormalizeCurrency(rawCurrency)
	if currency == "" {
		currency = DefaultCurrency
	}
	if !domain.IsSupportedCurrency(currency) {
		if s.strictCurrency {
			return decimal.Zero, "", fmt.Errorf(
				"%w: %s, use one of %s", ErrUnsupportedCurrency, currency,
				strings.Join(domain.SupportedCurrencies(), ", "),
			)
		}
		log.Debugf("unsupported currency %s, falling back to %s", currency, domain.USD)
	}
	return amount, currency, nil
}

// depositResult is the boundary where unexpected errors become settlement
// failures.
func (s *rampService) depositResult(
	result *DepositResult, err error,
) *DepositResult {
	if err != nil {
		log.WithError(err).Warn("deposit operation failed unexpectedly")
		return &DepositResult{
			Kind:    KindSettlementFailure,
			Message: fmt.Sprintf("Deposit failed: %s", err),
		}
	}
	return result
}

func (s *rampService) withdrawalResult(
	result *WithdrawalResult, err error,
) *WithdrawalResult {
	if err != nil {
		log.WithError(err).Warn("withdrawal operation failed unexpectedly")
		return &WithdrawalResult{
			Kind:    KindSettlementFailure,
			Message: fmt.Sprintf("Withdrawal failed: %s", err),
		}
	}
	return result
}

// optionalAddress returns the given address, or the one connected by the
// user if empty. Having neither is not an error, the address can still be
// given at confirmation.
func (s *rampService) optionalAddress(
	ctx context.Context, userID, address string,
) (string, error) {
	address, err := s.requiredAddress(ctx, userID, address)
	if errors.Is(err, domain.ErrAddressNotConnected) {
		return "", nil
	}
	return address, err
}

// requiredAddress returns the given address, or the one connected by the
// user if empty.
func (s *rampService) requiredAddress(
	ctx context.Context, userID, address string,
) (string, error) {
	if address = strings.TrimSpace(address); address != "" {
		return address, nil
	}
	if userID == "" {
		return "", domain.ErrMissingUserID
	}
	return s.addressBook.GetAddress(ctx, userID)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrInvalidAmountFormat
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmountFormat, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}

func quoteFailure(err error) *QuoteResult {
	return &QuoteResult{Kind: kindOf(err), Message: err.Error()}
}

func addressFailure(err error) *AddressResult {
	if !isBusinessError(err) {
		log.WithError(err).Warn("address book operation failed")
		return &AddressResult{
			Kind:    KindSettlementFailure,
			Message: ErrServiceUnavailable.Error(),
		}
	}
	return &AddressResult{Kind: kindOf(err), Message: err.Error()}
}

func historyFailure(err error) *HistoryResult {
	log.WithError(err).Warn("failed to fetch history")
	return &HistoryResult{
		Kind:    KindSettlementFailure,
		Message: ErrServiceUnavailable.Error(),
	}
}

func cancelResult(record string, ok bool, err error) *CancelResult {
	if err != nil {
		log.WithError(err).Warnf("failed to cancel %s", strings.ToLower(record))
		return &CancelResult{
			Kind:    KindSettlementFailure,
			Message: ErrServiceUnavailable.Error(),
		}
	}
	if !ok {
		return &CancelResult{
			Kind: KindInvalidState,
			Message: fmt.Sprintf(
				"%s not found or can no longer be cancelled", record,
			),
		}
	}
	return &CancelResult{
		Success: true,
		Message: fmt.Sprintf("%s cancelled", record),
	}
}

func observeDeposit(operation string, start time.Time, result **DepositResult) {
	r := *result
	if r == nil {
		return
	}
	stats.ObserveRampOperation(operation, string(r.Kind), start)
	if r.Success && r.Deposit != nil && r.Deposit.IsCompleted() {
		value, _ := r.Deposit.CreditedValue.Float64()
		stats.AddSettledValue("in", value)
	}
}

func observeWithdrawal(
	operation string, start time.Time, result **WithdrawalResult,
) {
	r := *result
	if r == nil {
		return
	}
	stats.ObserveRampOperation(operation, string(r.Kind), start)
	if r.Success && r.Withdrawal != nil && r.Withdrawal.IsCompleted() {
		value, _ := r.Withdrawal.RequestedValue.Float64()
		stats.AddSettledValue("out", value)
	}
}
