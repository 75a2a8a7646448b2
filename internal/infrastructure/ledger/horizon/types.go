package horizonledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/ports"
)

type accountResponse struct {
	ID       string            `json:"id"`
	Balances []balanceResponse `json:"balances"`
}

type balanceResponse struct {
	Balance     string `json:"balance"`
	AssetType   string `json:"asset_type"`
	AssetCode   string `json:"asset_code"`
	AssetIssuer string `json:"asset_issuer"`
}

func (a accountResponse) toBalance() (ports.Balance, error) {
	balance := ports.Balance{Exists: true, NativeBalance: decimal.Zero}
	for _, b := range a.Balances {
		amount, err := decimal.NewFromString(b.Balance)
		if err != nil {
			return ports.Balance{}, fmt.Errorf(
				"invalid balance %q for asset %s", b.Balance, b.AssetType,
			)
		}

		if b.AssetType == nativeAssetType {
			balance.NativeBalance = amount
			continue
		}
		balance.OtherAssets = append(balance.OtherAssets, ports.AssetBalance{
			Code:    b.AssetCode,
			Issuer:  b.AssetIssuer,
			Balance: amount,
		})
	}
	return balance, nil
}

// paymentRequest is the body accepted by the signer gateway. When source is
// set, the gateway uses it as the payment source account, so the network
// rejects the payment if secret is not a signer of source.
type paymentRequest struct {
	Secret      string `json:"secret"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	Asset       string `json:"asset"`
}

type transactionResponse struct {
	Hash string `json:"hash"`
}

// problemResponse is the error format of Horizon, friendbot and the signer.
type problemResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func problemDetail(body string) string {
	problem := problemResponse{}
	if err := json.Unmarshal([]byte(body), &problem); err == nil {
		for _, s := range []string{problem.Detail, problem.Error, problem.Title} {
			if s != "" {
				return s
			}
		}
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "unknown error"
	}
	return body
}
