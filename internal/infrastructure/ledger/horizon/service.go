package horizonledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
	"github.com/stellrflow/anchord/pkg/circuitbreaker"
	"github.com/stellrflow/anchord/pkg/httputil"
	"go.uber.org/ratelimit"
)

const (
	DefaultRequestsPerSecond = 10
	requestTimeout           = 30 * time.Second

	nativeAssetType = "native"
)

var (
	// ErrMissingHorizonURL ...
	ErrMissingHorizonURL = errors.New("missing horizon url")
	// ErrServerError is returned when a remote service responds with a 5xx
	// status.
	ErrServerError = errors.New("remote service error")
)

type Config struct {
	HorizonURL   string
	FriendbotURL string
	// SignerURL is the base url of the gateway building, signing and
	// submitting payments on behalf of a credential.
	SignerURL         string
	RequestsPerSecond int
}

func (c Config) validate() error {
	if c.HorizonURL == "" {
		return ErrMissingHorizonURL
	}
	for _, u := range []string{c.HorizonURL, c.FriendbotURL, c.SignerURL} {
		if u == "" {
			continue
		}
		if _, err := url.ParseRequestURI(u); err != nil {
			return fmt.Errorf("invalid url %s: %w", u, err)
		}
	}
	return nil
}

type service struct {
	horizonURL   string
	friendbotURL string
	signerURL    string

	client  *httputil.Client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// NewService returns a ledger client talking to a Horizon instance. Remote
// calls are rate limited and guarded by a circuit breaker.
func NewService(cfg Config) (ports.LedgerClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	return &service{
		horizonURL:   strings.TrimSuffix(cfg.HorizonURL, "/"),
		friendbotURL: cfg.FriendbotURL,
		signerURL:    strings.TrimSuffix(cfg.SignerURL, "/"),
		client:       httputil.NewClient(requestTimeout),
		cb:           circuitbreaker.NewCircuitBreaker("horizon"),
		limiter:      ratelimit.New(rps),
	}, nil
}

func (s *service) GetBalance(
	ctx context.Context, address string,
) (ports.Balance, error) {
	status, body, err := s.get(
		ctx, fmt.Sprintf("%s/accounts/%s", s.horizonURL, url.PathEscape(address)),
	)
	if err != nil {
		return ports.Balance{}, err
	}
	if status == http.StatusNotFound {
		return ports.Balance{NativeBalance: decimal.Zero}, nil
	}
	if status != http.StatusOK {
		return ports.Balance{}, fmt.Errorf(
			"failed to get account %s: %s", address, problemDetail(body),
		)
	}

	account := accountResponse{}
	if err := json.Unmarshal([]byte(body), &account); err != nil {
		return ports.Balance{}, fmt.Errorf("failed to parse account: %w", err)
	}
	return account.toBalance()
}

func (s *service) Transfer(
	ctx context.Context, credential, source, destination string,
	amount decimal.Decimal,
) (ports.TransferOutcome, error) {
	if s.signerURL == "" {
		return ports.TransferOutcome{
			Error: "no signer configured, direct custody transfers are disabled",
		}, nil
	}

	payload, _ := json.Marshal(paymentRequest{
		Secret:      credential,
		Source:      source,
		Destination: destination,
		Amount:      amount.StringFixed(domain.ValuePrecision),
		Asset:       nativeAssetType,
	})
	status, body, err := s.post(ctx, s.signerURL+"/payments", string(payload))
	if err != nil {
		return ports.TransferOutcome{}, err
	}
	return toOutcome(status, body), nil
}

func (s *service) FundViaFaucet(
	ctx context.Context, address string,
) (ports.TransferOutcome, error) {
	if s.friendbotURL == "" {
		return ports.TransferOutcome{Error: "no faucet available"}, nil
	}

	status, body, err := s.get(
		ctx, fmt.Sprintf("%s?addr=%s", s.friendbotURL, url.QueryEscape(address)),
	)
	if err != nil {
		return ports.TransferOutcome{}, err
	}
	return toOutcome(status, body), nil
}

func (s *service) get(ctx context.Context, u string) (int, string, error) {
	return s.do(func() (int, string, error) {
		return s.client.Get(ctx, u, map[string]string{"Accept": "application/json"})
	})
}

func (s *service) post(ctx context.Context, u, body string) (int, string, error) {
	return s.do(func() (int, string, error) {
		return s.client.Post(ctx, u, body, map[string]string{
			"Content-Type": "application/json",
		})
	})
}

// do rate limits the request and runs it through the circuit breaker. Only
// transport errors and server errors count as failures.
func (s *service) do(
	request func() (int, string, error),
) (int, string, error) {
	s.limiter.Take()

	res, err := s.cb.Execute(func() (interface{}, error) {
		status, body, err := request()
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %d %s", ErrServerError, status, problemDetail(body))
		}
		return response{status, body}, nil
	})
	if err != nil {
		log.WithError(err).Debug("horizon: request failed")
		return 0, "", err
	}

	r := res.(response)
	return r.status, r.body, nil
}

type response struct {
	status int
	body   string
}

func toOutcome(status int, body string) ports.TransferOutcome {
	if status != http.StatusOK {
		return ports.TransferOutcome{Error: problemDetail(body)}
	}

	tx := transactionResponse{}
	if err := json.Unmarshal([]byte(body), &tx); err != nil || tx.Hash == "" {
		return ports.TransferOutcome{Error: "missing transaction hash in response"}
	}
	return ports.TransferOutcome{Success: true, Reference: tx.Hash}
}
