package horizonledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/ports"
	horizonledger "github.com/stellrflow/anchord/internal/infrastructure/ledger/horizon"
	"github.com/stretchr/testify/require"
)

const (
	fundedAccount   = "GFUNDED"
	unknownAccount  = "GUNKNOWN"
	brokenAccount   = "GBROKEN"
	validSecret     = "SVALID"
	testTxHash      = "3389e9f0f1a65f19736cacf544c2e825313e8447f569233bb8db39aa607c8889"
	accountResponse = `{
		"id": "GFUNDED",
		"balances": [
			{"balance": "12.5000000", "asset_type": "credit_alphanum4", "asset_code": "USDC", "asset_issuer": "GISSUER"},
			{"balance": "100.0000000", "asset_type": "native"}
		]
	}`
)

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/" + fundedAccount:
			w.Write([]byte(accountResponse))
		case "/accounts/" + brokenAccount:
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"title": "Resource Missing"}`))
		}
	})
	mux.HandleFunc("/friendbot", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("addr") == fundedAccount {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": "account already funded to starting balance"}`))
			return
		}
		w.Write([]byte(`{"hash": "` + testTxHash + `"}`))
	})
	mux.HandleFunc("/signer/payments", func(w http.ResponseWriter, r *http.Request) {
		req := map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["secret"] != validSecret {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "op_underfunded"}`))
			return
		}
		if source := req["source"]; source != "" && source != fundedAccount {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "tx_bad_auth"}`))
			return
		}
		require.Equal(t, "1.2500000", req["amount"])
		require.Equal(t, "native", req["asset"])
		w.Write([]byte(`{"hash": "` + testTxHash + `"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T, server *httptest.Server) ports.LedgerClient {
	svc, err := horizonledger.NewService(horizonledger.Config{
		HorizonURL:   server.URL,
		FriendbotURL: server.URL + "/friendbot",
		SignerURL:    server.URL + "/signer",
	})
	require.NoError(t, err)
	return svc
}

func TestGetBalance(t *testing.T) {
	svc := newTestService(t, newTestServer(t))
	ctx := context.Background()

	balance, err := svc.GetBalance(ctx, fundedAccount)
	require.NoError(t, err)
	require.True(t, balance.Exists)
	require.True(t, decimal.NewFromInt(100).Equal(balance.NativeBalance))
	require.Len(t, balance.OtherAssets, 1)
	require.Equal(t, "USDC", balance.OtherAssets[0].Code)

	balance, err = svc.GetBalance(ctx, unknownAccount)
	require.NoError(t, err)
	require.False(t, balance.Exists)
	require.True(t, balance.NativeBalance.IsZero())

	_, err = svc.GetBalance(ctx, brokenAccount)
	require.ErrorIs(t, err, horizonledger.ErrServerError)
}

func TestFundViaFaucet(t *testing.T) {
	svc := newTestService(t, newTestServer(t))
	ctx := context.Background()

	outcome, err := svc.FundViaFaucet(ctx, unknownAccount)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, testTxHash, outcome.Reference)

	outcome, err = svc.FundViaFaucet(ctx, fundedAccount)
	require.NoError(t, err)
	require.False(t, outcome.Success)
	require.Contains(t, outcome.Error, "already funded")
}

func TestTransfer(t *testing.T) {
	svc := newTestService(t, newTestServer(t))
	ctx := context.Background()
	amount := decimal.RequireFromString("1.25")

	outcome, err := svc.Transfer(ctx, validSecret, "", fundedAccount, amount)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, testTxHash, outcome.Reference)

	outcome, err = svc.Transfer(ctx, validSecret, fundedAccount, unknownAccount, amount)
	require.NoError(t, err)
	require.True(t, outcome.Success)

	outcome, err = svc.Transfer(ctx, validSecret, unknownAccount, fundedAccount, amount)
	require.NoError(t, err)
	require.False(t, outcome.Success)
	require.Equal(t, "tx_bad_auth", outcome.Error)

	outcome, err = svc.Transfer(ctx, "SINVALID", "", fundedAccount, amount)
	require.NoError(t, err)
	require.False(t, outcome.Success)
	require.Equal(t, "op_underfunded", outcome.Error)
}

func TestNewServiceInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := horizonledger.NewService(horizonledger.Config{})
	require.ErrorIs(t, err, horizonledger.ErrMissingHorizonURL)

	_, err = horizonledger.NewService(horizonledger.Config{
		HorizonURL: "not a url",
	})
	require.Error(t, err)
}
