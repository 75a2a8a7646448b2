package httpinterface

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/stellrflow/anchord/internal/core/application"
	"github.com/stellrflow/anchord/internal/core/domain"
)

// flexString accepts both JSON strings and numbers, so that callers can send
// amounts and chat ids either way.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

func (s flexString) String() string {
	return strings.TrimSpace(string(s))
}

type depositRequest struct {
	UserID             flexString `json:"userId"`
	ChatID             flexString `json:"chatId"`
	Amount             flexString `json:"amount"`
	Currency           string     `json:"currency"`
	DestinationAddress string     `json:"destinationAddress"`
	SecretKey          string     `json:"secretKey"`
}

func (r depositRequest) toApp() application.DepositRequest {
	return application.DepositRequest{
		UserID:             userOrChat(r.UserID, r.ChatID),
		Amount:             r.Amount.String(),
		Currency:           r.Currency,
		DestinationAddress: r.DestinationAddress,
		Credential:         r.SecretKey,
	}
}

type confirmDepositRequest struct {
	DestinationAddress string `json:"destinationAddress"`
	SecretKey          string `json:"secretKey"`
}

type withdrawalRequest struct {
	UserID         flexString `json:"userId"`
	ChatID         flexString `json:"chatId"`
	RequestedValue flexString `json:"requestedValue"`
	Currency       string     `json:"currency"`
	SourceAddress  string     `json:"sourceAddress"`
	SecretKey      string     `json:"secretKey"`
}

func (r withdrawalRequest) toApp() application.WithdrawalRequest {
	return application.WithdrawalRequest{
		UserID:        userOrChat(r.UserID, r.ChatID),
		Value:         r.RequestedValue.String(),
		Currency:      r.Currency,
		SourceAddress: r.SourceAddress,
		Credential:    r.SecretKey,
	}
}

type confirmWithdrawalRequest struct {
	SourceAddress   string `json:"sourceAddress"`
	SecretKey       string `json:"secretKey"`
	TreasuryAddress string `json:"treasuryAddress"`
}

type connectRequest struct {
	UserID  flexString `json:"userId"`
	ChatID  flexString `json:"chatId"`
	Address string     `json:"address"`
}

type addressResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
	Address string `json:"address,omitempty"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func newAddressResponse(r *application.AddressResult) addressResponse {
	return addressResponse{
		Success: r.Success,
		UserID:  r.UserID,
		Address: r.Address,
		Message: r.Message,
		Kind:    string(r.Kind),
	}
}

type botCommandRequest struct {
	ChatID flexString `json:"chatId"`
	Text   string     `json:"text"`
}

func userOrChat(userID, chatID flexString) string {
	if id := userID.String(); id != "" {
		return id
	}
	return chatID.String()
}

type depositView struct {
	ID                  string `json:"id"`
	UserID              string `json:"userId"`
	FiatAmount          string `json:"fiatAmount"`
	Currency            string `json:"currency"`
	EstimatedValue      string `json:"estimatedValue"`
	ExchangeRate        string `json:"exchangeRate"`
	DestinationAddress  string `json:"destinationAddress,omitempty"`
	Status              string `json:"status"`
	SettlementReference string `json:"settlementReference,omitempty"`
	FiatReference       string `json:"fiatReference,omitempty"`
	CreditedValue       string `json:"creditedValue"`
	FailureReason       string `json:"failureReason,omitempty"`
	CreatedAt           int64  `json:"createdAt"`
	UpdatedAt           int64  `json:"updatedAt"`
	CompletedAt         int64  `json:"completedAt,omitempty"`
}

func newDepositView(d domain.Deposit) depositView {
	return depositView{
		ID:                  d.ID,
		UserID:              d.UserID,
		FiatAmount:          d.FiatAmount.StringFixed(domain.FiatPrecision),
		Currency:            d.Currency,
		EstimatedValue:      d.EstimatedValue.String(),
		ExchangeRate:        d.ExchangeRate.String(),
		DestinationAddress:  d.DestinationAddress,
		Status:              d.Status.String(),
		SettlementReference: d.SettlementReference,
		FiatReference:       d.FiatReference,
		CreditedValue:       d.CreditedValue.String(),
		FailureReason:       d.FailureReason,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		CompletedAt:         d.CompletedAt,
	}
}

type withdrawalView struct {
	ID                    string `json:"id"`
	UserID                string `json:"userId"`
	RequestedValue        string `json:"requestedValue"`
	EstimatedFiatPayout   string `json:"estimatedFiatPayout"`
	Currency              string `json:"currency"`
	FiatPerUnitRate       string `json:"fiatPerUnitRate"`
	SourceAddress         string `json:"sourceAddress,omitempty"`
	Status                string `json:"status"`
	LedgerReference       string `json:"ledgerReference,omitempty"`
	FiatReference         string `json:"fiatReference,omitempty"`
	ActualFiatPayout      string `json:"actualFiatPayout"`
	EstimatedTimeToSettle string `json:"estimatedTimeToSettle"`
	FailureReason         string `json:"failureReason,omitempty"`
	CreatedAt             int64  `json:"createdAt"`
	UpdatedAt             int64  `json:"updatedAt"`
	CompletedAt           int64  `json:"completedAt,omitempty"`
}

func newWithdrawalView(w domain.Withdrawal) withdrawalView {
	return withdrawalView{
		ID:                    w.ID,
		UserID:                w.UserID,
		RequestedValue:        w.RequestedValue.String(),
		EstimatedFiatPayout:   w.EstimatedFiatPayout.StringFixed(domain.FiatPrecision),
		Currency:              w.Currency,
		FiatPerUnitRate:       w.FiatPerUnitRate.String(),
		SourceAddress:         w.SourceAddress,
		Status:                w.Status.String(),
		LedgerReference:       w.LedgerReference,
		FiatReference:         w.FiatReference,
		ActualFiatPayout:      w.ActualFiatPayout.StringFixed(domain.FiatPrecision),
		EstimatedTimeToSettle: w.EstimatedTimeToSettle,
		FailureReason:         w.FailureReason,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
		CompletedAt:           w.CompletedAt,
	}
}

type depositResponse struct {
	Success             bool         `json:"success"`
	DepositID           string       `json:"depositId,omitempty"`
	CreditedValue       string       `json:"creditedValue"`
	SettlementReference string       `json:"settlementReference,omitempty"`
	Message             string       `json:"message"`
	Kind                string       `json:"kind,omitempty"`
	Deposit             *depositView `json:"deposit,omitempty"`
}

func newDepositResponse(r *application.DepositResult) depositResponse {
	resp := depositResponse{
		Success:             r.Success,
		DepositID:           r.DepositID(),
		CreditedValue:       r.CreditedValue().String(),
		SettlementReference: r.SettlementReference(),
		Message:             r.Message,
		Kind:                string(r.Kind),
	}
	if r.Deposit != nil {
		view := newDepositView(*r.Deposit)
		resp.Deposit = &view
	}
	return resp
}

type withdrawalResponse struct {
	Success             bool            `json:"success"`
	WithdrawalID        string          `json:"withdrawalId,omitempty"`
	ValueDebited        string          `json:"valueDebited"`
	FiatPayout          string          `json:"fiatPayout"`
	Currency            string          `json:"currency,omitempty"`
	SettlementReference string          `json:"settlementReference,omitempty"`
	ETA                 string          `json:"eta,omitempty"`
	Message             string          `json:"message"`
	Kind                string          `json:"kind,omitempty"`
	Withdrawal          *withdrawalView `json:"withdrawal,omitempty"`
}

func newWithdrawalResponse(r *application.WithdrawalResult) withdrawalResponse {
	resp := withdrawalResponse{
		Success:             r.Success,
		WithdrawalID:        r.WithdrawalID(),
		ValueDebited:        r.ValueDebited().String(),
		FiatPayout:          r.FiatPayout().StringFixed(domain.FiatPrecision),
		SettlementReference: r.SettlementReference(),
		Message:             r.Message,
		Kind:                string(r.Kind),
	}
	if r.Withdrawal != nil {
		resp.Currency = r.Withdrawal.Currency
		resp.ETA = r.Withdrawal.EstimatedTimeToSettle
		view := newWithdrawalView(*r.Withdrawal)
		resp.Withdrawal = &view
	}
	return resp
}

type cancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

type depositQuoteResponse struct {
	Success        bool   `json:"success"`
	FiatAmount     string `json:"fiatAmount,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Rate           string `json:"rate,omitempty"`
	EstimatedValue string `json:"estimatedValue,omitempty"`
	Message        string `json:"message"`
	Kind           string `json:"kind,omitempty"`
}

type withdrawalQuoteResponse struct {
	Success             bool   `json:"success"`
	Value               string `json:"value,omitempty"`
	Currency            string `json:"currency,omitempty"`
	Rate                string `json:"rate,omitempty"`
	EstimatedFiatPayout string `json:"estimatedFiatPayout,omitempty"`
	ETA                 string `json:"eta,omitempty"`
	Message             string `json:"message"`
	Kind                string `json:"kind,omitempty"`
}

type rateView struct {
	Currency    string `json:"currency"`
	FiatToValue string `json:"fiatToValue"`
	ValueToFiat string `json:"valueToFiat"`
}

type ratesResponse struct {
	Success bool       `json:"success"`
	Asset   string     `json:"asset"`
	Rates   []rateView `json:"rates"`
}

type historyResponse struct {
	Success     bool             `json:"success"`
	Deposits    []depositView    `json:"deposits"`
	Withdrawals []withdrawalView `json:"withdrawals"`
	Message     string           `json:"message,omitempty"`
	Kind        string           `json:"kind,omitempty"`
}

type botCommandResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}
