package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/serroba/link-shortener/internal/ratelimit"
	"github.com/serroba/link-shortener/internal/store"
)

func newTestStore() ratelimit.Store {
	return store.NewRateLimitMemoryStore()
}

func serve(router *chi.Mux, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}
