package api

import (
	"net/http"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/pkg/openapi"
	"github.com/JaimeStill/chronicle/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
	specBytes []byte,
) {
	routes.Register(
		mux,
		activities.NewHandler(domain.Queue, runtime.Logger).Routes(),
		domain.Suggestions.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Privacy.Handler().Routes(),
	)

	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
}
