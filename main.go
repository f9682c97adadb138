// TaskAPI is a concurrent web service that provides CRUD operations for tasks.
//
// Tasks are kept in a MySQL table or, by default, in process memory. Updates are partial:
// only the fields present in the request body change. Rate limiting with a shared token
// bucket protects against abuse, Prometheus metrics count calls and errors per endpoint,
// and bearer-token authentication can be switched on by configuring a secret key.
//
// The following endpoints are available:
//
//  1. GET /              - Liveness check
//  2. POST /tasks        - Create a new task
//  3. GET /tasks         - Get all tasks, optionally one page of them
//  4. GET /tasks/{id}    - Get a task by ID
//  5. PUT /tasks/{id}    - Update an existing task
//  6. DELETE /tasks/{id} - Delete an existing task
//  7. POST /login        - Login to the service (only when auth is enabled)
//  8. GET /metrics       - Display Prometheus metrics
//  9. GET /swagger/      - Swagger UI
//
// Run taskapi --help for the configuration flags and their environment variables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"TaskAPI/config"
	_ "TaskAPI/docs"
	"TaskAPI/handlers"
	"TaskAPI/response"
	"TaskAPI/store"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

var log = logrus.New()

// A function type that represents a handler function with metrics.
type HandlerFuncWithMetrics func(http.ResponseWriter, *http.Request, *prometheus.CounterVec, *prometheus.CounterVec)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file loaded")
	}

	app := &cli.App{
		Name:   "taskapi",
		Usage:  "serve the task management REST API",
		Flags:  config.Flags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	taskStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer taskStore.Close()

	h := handlers.NewHandler(taskStore, log, handlers.AuthConfig{
		SecretKey:     []byte(cfg.Auth.SecretKey),
		AdminUsername: cfg.Auth.AdminUsername,
		AdminPassword: cfg.Auth.AdminPassword,
		UserUsername:  cfg.Auth.UserUsername,
		UserPassword:  cfg.Auth.UserPassword,
	})
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(h, cfg, prometheus.NewRegistry()),
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"store": cfg.Store, "auth": cfg.Auth.SecretKey != ""}).
			Info("Server listening on port " + cfg.Port)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore returns the store selected by cfg.Store.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMySQL:
		dsn := store.MySQLConfig{
			Username: cfg.DB.Username,
			Password: cfg.DB.Password,
			Address:  cfg.DB.Address,
			DBName:   cfg.DB.Name,
		}.DSN()
		s, err := store.OpenMySQL(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.WithField("address", cfg.DB.Address).Info("Connected!")
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// newRouter registers every route on a new ServeMux. Counters are registered on reg,
// which also backs the /metrics endpoint.
func newRouter(h *handlers.Handler, cfg config.Config, reg *prometheus.Registry) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(cfg.Rate.Limit), cfg.Rate.Burst)
	errorCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskapi_errors_total",
		Help: "Total number of errors occurred in the application.",
	}, []string{"endpoint"})
	endPointCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskapi_endpoint_calls_total",
		Help: "Total number of calls per endpoint.",
	}, []string{"endpoint"})
	reg.MustRegister(errorCounter, endPointCounter)

	route := func(handlerFunc HandlerFuncWithMetrics) http.HandlerFunc {
		return MetricsHandler(handlerFunc, limiter, endPointCounter, errorCounter)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", route(h.HealthHandler))
	mux.HandleFunc("POST /tasks", route(h.CreateTaskHandler))
	mux.HandleFunc("GET /tasks", route(h.ListTasksHandler))
	mux.HandleFunc("GET /tasks/{id}", route(h.GetTaskHandler))
	mux.HandleFunc("PUT /tasks/{id}", route(h.UpdateTaskHandler))
	mux.HandleFunc("DELETE /tasks/{id}", route(h.DeleteTaskHandler))
	if cfg.Auth.SecretKey != "" {
		mux.HandleFunc("POST /login", route(h.LoginHandler))
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	return mux
}

// rateLimiter is a middleware function that implements rate limiting for HTTP requests.
// If the request is not allowed by limiter, it returns a JSON response with an error message
// and HTTP status code 429 (Too Many Requests); otherwise it calls next.
func rateLimiter(limiter *rate.Limiter, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		if !limiter.Allow() {
			message := response.Message{
				Status: "Request Failed",
				Body:   "The API is at capacity, try again later.",
			}
			res.Header().Set("Content-Type", "application/json")
			res.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(res).Encode(&message)
			return
		}
		next(res, req)
	})
}

// MetricsHandler is a middleware function that wraps the provided handler function
// with metrics collection and rate limiting capabilities.
func MetricsHandler(handlerFunc HandlerFuncWithMetrics, limiter *rate.Limiter, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		rateLimiter(limiter, func(res http.ResponseWriter, req *http.Request) {
			handlerFunc(res, req, endPointCounter, errorCounter)
		}).ServeHTTP(res, req)
	}
}
