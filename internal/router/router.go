package router

import (
	"database/sql"
	"net/http"

	imgmem "pet-reunite/internal/adapters/images/memory"
	mem "pet-reunite/internal/adapters/storage/memory"
	pg "pet-reunite/internal/adapters/storage/postgres"
	"pet-reunite/internal/domain/matching"
	"pet-reunite/internal/domain/matching/metrics"
	"pet-reunite/internal/domain/reports"
	"pet-reunite/internal/middleware"
	"pet-reunite/internal/platform/config"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/auth"
	"pet-reunite/internal/ports/describe"
	imagesport "pet-reunite/internal/ports/images"
	"pet-reunite/internal/ports/notify"
	"pet-reunite/internal/ports/vision"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Colaboradores externos. Cualquiera en nil degrada esa señal a Absent.
	Recognizer vision.Recognizer
	Describer  describe.Describer
	Notifier   notify.Sink
	Images     imagesport.Store

	Log     logger.Logger
	Metrics *metrics.Metrics

	Matching config.Matching
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		reportsRepo reports.Repository
		matchesRepo matching.MatchRepository
		imageStore  imagesport.Store
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := config.FromEnv().DBDSN; dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		reportsRepo = pg.NewReportsRepo(db)
		matchesRepo = pg.NewMatchesRepo(db)
		imageStore = pg.NewImagesRepo(db)
	} else {
		reportsRepo = mem.NewReportsRepo()
		matchesRepo = mem.NewMatchesRepo()
		imageStore = imgmem.NewStore()
	}
	if opts.Images != nil {
		imageStore = opts.Images
	}

	reportsSvc := reports.NewService(reportsRepo)

	engine := matching.NewEngine(matching.Deps{
		Reports:    reportsRepo,
		Matches:    matchesRepo,
		Images:     imageStore,
		Recognizer: opts.Recognizer,
		Describer:  opts.Describer,
		Notifier:   opts.Notifier,
		Log:        log,
		Metrics:    opts.Metrics,
	}, matching.Config{
		MatchRadiusKm:  opts.Matching.MatchRadiusKm,
		SearchRadiusKm: opts.Matching.SearchRadiusKm,
		Concurrency:    opts.Matching.Concurrency,
		SignalTimeout:  opts.Matching.SignalTimeout,
		MatchDeadline:  opts.Matching.MatchDeadline,
	})

	// Rutas por módulo
	reports.RegisterRoutes(r, reportsSvc)
	matching.RegisterRoutes(r, engine, reportsSvc)

	return r
}
