package bootstrap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/vilakshan/pli-leaderboard/api"
	"github.com/vilakshan/pli-leaderboard/audit"
	"github.com/vilakshan/pli-leaderboard/aum"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/identity"
	"github.com/vilakshan/pli-leaderboard/insurance"
	"github.com/vilakshan/pli-leaderboard/lock"
	"github.com/vilakshan/pli-leaderboard/logging"
	"github.com/vilakshan/pli-leaderboard/lumpsum"
	"github.com/vilakshan/pli-leaderboard/metrics"
	"github.com/vilakshan/pli-leaderboard/orchestrator"
	"github.com/vilakshan/pli-leaderboard/referral"
	"github.com/vilakshan/pli-leaderboard/sip"
	"github.com/vilakshan/pli-leaderboard/store/sqlite"
)

// App bundles every long-lived collaborator a pli binary needs, built
// once at startup and shared between the HTTP server and the offline CLI
// commands (spec.md's "reachable offline, e.g. from a cron job without
// going through HTTP" requirement on C9).
type App struct {
	Settings     Settings
	Log          zerolog.Logger
	Store        *sqlite.Store
	Config       *config.Store
	Audit        *audit.Service
	Identity     identity.Directory
	Locker       *lock.Locker
	Orchestrator *orchestrator.Orchestrator
	Handler      *api.Handler
	Metrics      *metrics.Registry
	redis        *redis.Client
}

// New opens the database, Redis client, and every domain package on top
// of them, then wires the orchestrator's Scorers/Sink from the resulting
// runners so the same App serves both `pli serve` and `pli reaggregate`.
func New(settings Settings) (*App, error) {
	log := logging.New(logging.Options{Level: settings.LogLevel, Pretty: settings.LogPretty})

	store, err := sqlite.Open(settings.DBPath)
	if err != nil {
		return nil, eris.Wrap(err, "bootstrap: open sqlite store")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     settings.RedisAddr,
		Password: settings.RedisPassword,
	})
	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
	locker := lock.NewLocker(redisClient, "pli:job_lock:").WithMetrics(reg)

	cfgStore := config.NewStore(store)
	auditSvc := audit.NewService(store, log)
	aumLookup := aum.NewLookup(store)

	lumpsumRunner := lumpsum.NewRunner(store, aumLookup, store, store, store, store, cfgStore, auditSvc, log)
	sipRunner := sip.NewRunner(store, aumLookup, store, store, cfgStore, auditSvc, log)
	insuranceRunner := insurance.NewRunner(store, store, store, store, cfgStore, auditSvc, log)
	referralRunner := referral.NewRunner(store, store, cfgStore, auditSvc, log)

	scorers := orchestrator.Scorers{
		RunLumpsum:      lumpsumRunner.Run,
		RunInsurance:    insuranceRunner.Run,
		RunSip:          sipRunner.Run,
		RunReferral:     referralRunner.Run,
		LoadAdjustments: store.AllForMonth,
		LoadRMs:         store.All,
	}
	orch := orchestrator.New(scorers, store, log).WithMetrics(reg)

	handler := api.NewHandler(store, store, cfgStore, orch, locker, log)

	return &App{
		Settings: settings, Log: log, Store: store, Config: cfgStore, Audit: auditSvc,
		Identity: store, Locker: locker, Orchestrator: orch, Handler: handler, Metrics: reg,
		redis: redisClient,
	}, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	_ = a.redis.Close()
	return a.Store.Close()
}
