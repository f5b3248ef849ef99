package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/chronicle/pkg/middleware"
	"github.com/JaimeStill/chronicle/pkg/openapi"
	"github.com/JaimeStill/chronicle/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CHRONICLE_CORS_ENABLED",
	Origins:          "CHRONICLE_CORS_ORIGINS",
	AllowedMethods:   "CHRONICLE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CHRONICLE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CHRONICLE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CHRONICLE_CORS_MAX_AGE",
}

var docsEnv = &openapi.ConfigEnv{
	Title:       "CHRONICLE_DOCS_TITLE",
	Description: "CHRONICLE_DOCS_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "CHRONICLE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "CHRONICLE_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, and pagination settings.
type APIConfig struct {
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
	Docs       openapi.Config        `toml:"docs"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Docs.Finalize(docsEnv); err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.Docs.Merge(&overlay.Docs)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("CHRONICLE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
}
