// Package api is the serverless entry point. The platform calls Handler for every request.
package api

import (
	"net/http"
	"sync"

	"portfolio-email-service/config"
	"portfolio-email-service/internal/bootstrap"
	"portfolio-email-service/internal/delivery/http/response"
	"portfolio-email-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

const MsgConfigError = "Server configuration error"

var (
	once    sync.Once
	handler http.Handler
)

// Handler serves one request, building the service on first use.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		handler = build(config.LoadConfig)
	})
	handler.ServeHTTP(w, r)
}

// build wires the service. Invalid configuration yields a handler that answers every
// request with a 500 envelope instead of crashing the function.
func build(load func() (*config.Config, error)) http.Handler {
	cfg, err := load()
	if err == nil {
		logger.Init(cfg.Environment)
		bootstrap.LogMailConfig(cfg, logger.Log)

		var app *bootstrap.App
		app, err = bootstrap.New(cfg, bootstrap.Options{})
		if err == nil {
			return app.Router
		}
	}

	logger.Log.Error("Portfolio email service is misconfigured", "error", err)
	detail := err.Error()
	exposeDetail := cfg == nil || !cfg.IsProduction()

	r := gin.New()
	r.NoRoute(func(c *gin.Context) {
		var diag interface{}
		if exposeDetail {
			diag = detail
		}
		response.Error(c, http.StatusInternalServerError, MsgConfigError, diag)
	})
	return r
}
