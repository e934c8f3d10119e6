package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	appadapters "childminder/internal/application/adapters"
	appmetrics "childminder/internal/application/metrics"
	appservice "childminder/internal/application/service"
	appstore "childminder/internal/application/store"
	"childminder/internal/integrations/dbs"
	"childminder/internal/integrations/postcode"
	"childminder/internal/integrations/providers"
	"childminder/internal/integrations/register"
	"childminder/internal/integrations/worldpay"
	loginadapters "childminder/internal/login/adapters"
	loginmetrics "childminder/internal/login/metrics"
	loginservice "childminder/internal/login/service"
	"childminder/internal/login/store/lockout"
	"childminder/internal/login/store/revocation"
	userstore "childminder/internal/login/store/user"
	"childminder/internal/notify"
	paymentmetrics "childminder/internal/payment/metrics"
	paymentservice "childminder/internal/payment/service"
	paymentstore "childminder/internal/payment/store"
	"childminder/internal/platform/config"
	"childminder/internal/platform/kafka"
	"childminder/internal/platform/postgres"
	redisplatform "childminder/internal/platform/redis"
	"childminder/internal/reminders"
	remindermetrics "childminder/internal/reminders/metrics"
	reviewservice "childminder/internal/review/service"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/audit/outbox"
	"childminder/pkg/platform/audit/publisher"
	auditmemory "childminder/pkg/platform/audit/store/memory"
	auditpostgres "childminder/pkg/platform/audit/store/postgres"
	"childminder/pkg/platform/circuit"
)

const issuer = "childminder"

// infra holds the optional backing services. Each is nil when unconfigured
// and the matching in-memory store is used instead.
type infra struct {
	db       *sql.DB
	redis    *redisplatform.Client
	producer *kafka.Producer
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	in := &infra{db: db}
	if db != nil {
		if err := postgres.Migrate(ctx, db); err != nil {
			in.Close()
			return nil, err
		}
	}
	if in.redis, err = redisplatform.New(ctx, cfg.Redis); err != nil {
		in.Close()
		return nil, err
	}
	if in.producer, err = kafka.NewProducer(cfg.Kafka, log); err != nil {
		in.Close()
		return nil, err
	}
	if in.producer != nil {
		if err := in.producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "error", err, "topic", cfg.Kafka.AuditTopic)
		}
	}
	return in, nil
}

func (in *infra) Close() {
	if in.producer != nil {
		in.producer.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

// applicationStore is everything the application domain's consumers need
// from storage.
type applicationStore interface {
	appservice.Store
	reviewservice.Store
	reminders.Store
}

type services struct {
	login   *loginservice.Service
	tokens  *loginservice.TokenService
	revoked loginservice.RevocationStore
	apps    *appservice.Service
	payment *paymentservice.Service
	review  *reviewservice.Service
	sweeper *reminders.Sweeper
	auditor *publisher.Publisher
	relay   *outbox.Relay
}

func build(ctx context.Context, cfg config.Config, in *infra, log *slog.Logger) (*services, error) {
	var (
		users       loginservice.UserStore
		lockouts    loginservice.LockoutStore
		revocations loginservice.RevocationStore
		apps        applicationStore
		payments    paymentservice.Store
		auditStore  audit.Store
		tx          appservice.TxRunner
		relay       *outbox.Relay
	)

	switch {
	case in.db != nil:
		users = userstore.NewPostgres(in.db)
		lockouts = lockout.NewPostgres(in.db, cfg.Login.FailureWindow)
		apps = appstore.NewPostgres(in.db)
		payments = paymentstore.NewPostgres(in.db)
		tx = appstore.NewPostgresTx(in.db)
		pgAudit := auditpostgres.New(in.db)
		auditStore = pgAudit
		if in.producer != nil {
			relay = outbox.NewRelay(in.db, pgAudit, in.producer, cfg.Kafka.OutboxInterval, cfg.Kafka.OutboxBatch, log)
		}
	default:
		log.Warn("DATABASE_URL not set, using in-memory stores")
		users = userstore.NewInMemoryUserStore()
		lockouts = lockout.NewInMemoryStore(cfg.Login.FailureWindow)
		apps = appstore.NewInMemoryStore()
		payments = paymentstore.NewInMemoryStore()
		tx = appstore.NoTx{}
		auditStore = auditmemory.NewInMemoryStore()
	}

	if in.redis != nil {
		lockouts = lockout.NewRedis(in.redis.Client, cfg.Login.FailureWindow)
		revocations = revocation.NewRedis(in.redis.Client)
	} else {
		revocations = revocation.NewInMemoryStore()
	}

	auditor := publisher.NewPublisher(auditStore,
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
	)

	gateways, err := newGateways(cfg, log)
	if err != nil {
		return nil, err
	}
	contacts := appadapters.NewContacts(users)

	appSvc, err := appservice.New(apps, appservice.Integrations{
		DBS:       gateways.dbs,
		Addresses: gateways.postcode,
		Register:  gateways.register,
		Notifier:  gateways.notifier,
		Contacts:  contacts,
	},
		appservice.WithLogger(log),
		appservice.WithAuditPublisher(auditor),
		appservice.WithMetrics(appmetrics.New()),
		appservice.WithTx(tx),
		appservice.WithTemplates(cfg.Notify.Templates, cfg.Server.PublicURL),
	)
	if err != nil {
		return nil, err
	}

	tokens := loginservice.NewTokenService(cfg.Server.SessionKey, issuer)
	loginSvc, err := loginservice.New(users, lockouts, revocations, loginadapters.NewApplications(appSvc), gateways.notifier, tokens,
		loginservice.WithLogger(log),
		loginservice.WithAuditPublisher(auditor),
		loginservice.WithMetrics(loginmetrics.New()),
		loginservice.WithConfig(cfg.Login),
		loginservice.WithTemplates(cfg.Notify.Templates, cfg.Server.PublicURL),
	)
	if err != nil {
		return nil, err
	}

	paySvc, err := paymentservice.New(payments, gateways.worldpay, appSvc,
		paymentservice.WithLogger(log),
		paymentservice.WithAuditPublisher(auditor),
		paymentservice.WithMetrics(paymentmetrics.New()),
	)
	if err != nil {
		return nil, err
	}

	reviewSvc, err := reviewservice.New(apps, contacts, gateways.notifier,
		reviewservice.WithLogger(log),
		reviewservice.WithAuditPublisher(auditor),
		reviewservice.WithFurtherInfoTemplate(cfg.Notify.Templates.FurtherInfo, cfg.Server.PublicURL),
	)
	if err != nil {
		return nil, err
	}

	sweeper, err := reminders.New(apps, contacts, gateways.notifier, cfg.Reminder,
		reminders.WithLogger(log),
		reminders.WithAuditPublisher(auditor),
		reminders.WithMetrics(remindermetrics.New()),
		reminders.WithTemplates(cfg.Notify.Templates, cfg.Server.PublicURL),
	)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "services wired", "notify", cfg.Notify.APIKey != "", "audit_relay", relay != nil)
	return &services{
		login:   loginSvc,
		tokens:  tokens,
		revoked: revocations,
		apps:    appSvc,
		payment: paySvc,
		review:  reviewSvc,
		sweeper: sweeper,
		auditor: auditor,
		relay:   relay,
	}, nil
}

type gateways struct {
	notifier notify.Sender
	dbs      *dbs.Client
	postcode *postcode.Client
	register *register.Client
	worldpay *worldpay.Client
}

// newGateways builds the outbound clients. Each provider gets its own
// circuit breaker; the latency metrics are shared and labelled by provider.
func newGateways(cfg config.Config, log *slog.Logger) (*gateways, error) {
	m := providers.NewMetrics()
	opts := func(name string) []providers.ClientOption {
		return []providers.ClientOption{
			providers.WithBreaker(circuit.New(name)),
			providers.WithMetrics(m),
			providers.WithLogger(log),
		}
	}

	g := &gateways{
		dbs:      dbs.New(cfg.DBS.BaseURL, cfg.DBS.APIKey, cfg.DBS.Timeout, opts("dbs")...),
		postcode: postcode.New(cfg.Postcode.BaseURL, cfg.Postcode.APIKey, cfg.Postcode.Timeout, opts("postcode")...),
		register: register.New(cfg.Register.BaseURL, cfg.Register.APIKey, cfg.Register.Timeout, opts("register")...),
		worldpay: worldpay.New(cfg.Payment.BaseURL, cfg.Payment.MerchantCode, cfg.Payment.APIKey, cfg.Payment.Timeout, opts("worldpay")...),
	}
	if cfg.Notify.APIKey == "" {
		log.Warn("NOTIFY_API_KEY not set, notifications are logged instead of sent")
		g.notifier = notify.LogSender{Logger: log}
		return g, nil
	}
	client, err := notify.New(cfg.Notify.BaseURL, cfg.Notify.APIKey, cfg.Notify.Timeout, opts("notify")...)
	if err != nil {
		return nil, fmt.Errorf("notify client: %w", err)
	}
	g.notifier = client
	return g, nil
}
