package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customMiddleware "github.com/promline/shift-task-service/internal/middleware"
)

// Публичные и служебные маршруты живут на разных роутерах:
// /health и /metrics не должны быть доступны через публичный порт
func TestPortSeparation(t *testing.T) {
	publicRouter := chi.NewRouter()
	publicRouter.Use(middleware.RequestID)
	publicRouter.Use(middleware.RealIP)
	publicRouter.Use(customMiddleware.Recovery())
	publicRouter.Use(middleware.Timeout(60 * time.Second))

	publicRouter.Route("/task", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[]`))
		})
	})

	internalRouter := chi.NewRouter()
	internalRouter.Use(middleware.RequestID)
	internalRouter.Use(middleware.RealIP)
	internalRouter.Use(customMiddleware.Recovery())
	internalRouter.Use(middleware.Timeout(60 * time.Second))

	internalRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	internalRouter.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	publicServer := httptest.NewServer(publicRouter)
	defer publicServer.Close()

	internalServer := httptest.NewServer(internalRouter)
	defer internalServer.Close()

	// Публичный роутер отвечает на маршруты заданий
	resp, err := http.Get(publicServer.URL + "/task/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Служебные маршруты недоступны на публичном порту
	resp, err = http.Get(publicServer.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Служебный роутер отвечает на health и ready
	resp, err = http.Get(internalServer.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(internalServer.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Маршруты заданий недоступны на служебном порту
	resp, err = http.Get(internalServer.URL + "/task/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
