package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/config"
	"github.com/stellrflow/anchord/internal/core/application"
	"github.com/stellrflow/anchord/internal/core/ports"
	fiatrail "github.com/stellrflow/anchord/internal/infrastructure/fiat-rail"
	horizonledger "github.com/stellrflow/anchord/internal/infrastructure/ledger/horizon"
	"github.com/stellrflow/anchord/internal/infrastructure/ledger/simnet"
	webhookpubsub "github.com/stellrflow/anchord/internal/infrastructure/pubsub/webhook"
	chatinterface "github.com/stellrflow/anchord/internal/interfaces/chat"
	httpinterface "github.com/stellrflow/anchord/internal/interfaces/http"
	"github.com/stellrflow/anchord/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ledger, err := newLedgerClient()
	if err != nil {
		log.WithError(err).Fatal("failed to create ledger client")
	}
	publisher, err := newPublisher()
	if err != nil {
		log.WithError(err).Fatal("failed to create webhook publisher")
	}

	minReserve := config.GetMinReserve()
	appConfig := &application.Config{
		DBType:          config.GetString(config.DBTypeKey),
		DBConfig:        dbConfig(),
		LedgerClient:    ledger,
		FiatRail:        fiatrail.NewService(config.GetDuration(config.FiatSettlementDelayKey)),
		Publisher:       publisher,
		TreasuryAddress: config.GetString(config.TreasuryAddressKey),
		MinReserve:      &minReserve,
		StrictCurrency:  config.GetBool(config.StrictCurrencyKey),
	}
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid app config")
	}
	defer appConfig.RepoManager().Close()

	bot, err := chatinterface.NewBot(appConfig.RampService())
	if err != nil {
		log.WithError(err).Fatal("failed to create chat bot")
	}

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Port:           config.GetInt(config.HTTPListeningPortKey),
		IdempotencyTTL: config.GetDuration(config.IdempotencyTTLKey),
		RampSvc:        appConfig.RampService(),
		Bot:            bot,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create REST interface")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if interval := config.GetInt(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(
			ctx, time.Duration(interval)*time.Second,
			filepath.Join(config.GetDatadir(), config.ProfilerLocation),
		)
	}

	log.Info("starting daemon")
	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start REST interface")
	}
	log.Infof(
		"ledger: %s, db: %s", config.GetString(config.LedgerTypeKey),
		config.GetString(config.DBTypeKey),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-sigChan

	log.Info("shutting down daemon")
	svc.Stop()
	log.Info("exiting")
}

func newLedgerClient() (ports.LedgerClient, error) {
	if config.GetString(config.LedgerTypeKey) == config.LedgerHorizon {
		return horizonledger.NewService(horizonledger.Config{
			HorizonURL:        config.GetString(config.HorizonURLKey),
			FriendbotURL:      config.GetString(config.FriendbotURLKey),
			SignerURL:         config.GetString(config.SignerURLKey),
			RequestsPerSecond: config.GetInt(config.LedgerRPSKey),
		})
	}

	log.Warn("using the simulated ledger, balances are not persisted")
	ledger := simnet.NewLedger(decimal.Zero)
	if treasury := config.GetString(config.TreasuryAddressKey); treasury != "" {
		ledger.AddAccount(treasury, decimal.Zero)
	}
	return ledger, nil
}

func newPublisher() (ports.Publisher, error) {
	endpoints := config.GetWebhookEndpoints()
	secret := config.GetString(config.WebhookSecretKey)

	hooks := make([]*webhookpubsub.Webhook, 0, len(endpoints))
	for _, endpoint := range endpoints {
		hook, err := webhookpubsub.ParseWebhook(endpoint, secret)
		if err != nil {
			return nil, err
		}
		log.Debugf("webhook: notifying %s of %s events", hook.Endpoint, hook.Event)
		hooks = append(hooks, hook)
	}
	return webhookpubsub.NewWebhookPubSubService(hooks...), nil
}

func dbConfig() interface{} {
	switch config.GetString(config.DBTypeKey) {
	case application.DBPostgres:
		return config.GetString(config.PgConnectAddr)
	case application.DBBadger:
		return config.GetDbDir()
	default:
		return nil
	}
}
