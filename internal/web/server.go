package web

import (
	"net/http"
	"time"

	"efi-app/internal/model"
	"efi-app/internal/observability"
	"efi-app/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/kit/log"
	"github.com/rs/cors"
)

type Server struct {
	store   store.Store
	catalog model.Catalog
	logger  log.Logger
	metrics *observability.Metrics
	loc     *time.Location
	now     func() time.Time
	origins []string
}

type Options struct {
	Catalog model.Catalog
	Logger  log.Logger
	Metrics *observability.Metrics
	// Location sets the day boundaries of the scoreboard; nil means UTC.
	Location    *time.Location
	CORSOrigins []string
	Now         func() time.Time
}

func NewServer(store store.Store, opts Options) *Server {
	s := &Server{
		store:   store,
		catalog: opts.Catalog,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		loc:     opts.Location,
		now:     opts.Now,
		origins: opts.CORSOrigins,
	}
	if len(s.catalog) == 0 {
		s.catalog = model.DefaultCatalog
	}
	if s.logger == nil {
		s.logger = log.NewNopLogger()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(withRequestID)
	r.Use(s.withAccessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/competitions", s.handleCompetitions)
		r.Get("/latest", s.handleLatest)
		r.Get("/table", s.handleTable)
		r.Get("/scores", s.handleScores)
		r.Get("/scoreboard", s.handleScoreboard)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         3600,
	})
	return c.Handler(r)
}
