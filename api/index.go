package handler

import (
	"net/http"
	"sync"

	"parkspot/config"
	"parkspot/di"
	_ "parkspot/docs"
	"parkspot/shared/logger"
)

var (
	once   sync.Once
	server http.Handler
)

// Handler is the serverless entrypoint. The dependency graph is built on the first request and reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()
		logger.SetLogLevel(cfg)

		server = di.InitializeService()
	})

	r.RequestURI = r.URL.String()

	server.ServeHTTP(w, r)
}
