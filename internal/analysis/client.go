package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/chronicle/pkg/formatting"
	"github.com/JaimeStill/chronicle/pkg/lifecycle"
)

// System defines the public contract of the inference boundary.
type System interface {
	// Analyze produces a normalized result for the request. It falls back to
	// the rule-based analyzer on unavailability, error, timeout, or an
	// unparseable response, so it always returns a usable result.
	Analyze(ctx context.Context, req Request, instructions string) *Result
	// Available reports the last observed probe state.
	Available() bool
	// Start launches the availability probe loop.
	Start(lc *lifecycle.Coordinator) error
}

// ClientConfig holds inference client tuning.
type ClientConfig struct {
	// Timeout bounds a single inference call. A timeout is treated
	// identically to an error response and triggers the fallback.
	Timeout time.Duration
	// ProbeInterval is the period of the availability probe loop.
	ProbeInterval time.Duration
}

type client struct {
	agent     gaconfig.AgentConfig
	cfg       ClientConfig
	fallback  *RuleAnalyzer
	available atomic.Bool
	probe     *http.Client
	logger    *slog.Logger
}

// NewClient creates an inference client for the configured agent.
// Availability starts pessimistic and is corrected by the first probe.
func NewClient(agentCfg gaconfig.AgentConfig, cfg ClientConfig, logger *slog.Logger) System {
	return &client{
		agent:    agentCfg,
		cfg:      cfg,
		fallback: NewRuleAnalyzer(),
		probe:    &http.Client{Timeout: 3 * time.Second},
		logger:   logger.With("system", "inference"),
	}
}

func (c *client) Available() bool {
	return c.available.Load()
}

func (c *client) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting inference probe", "interval", c.cfg.ProbeInterval)

	done := make(chan struct{})
	go func() {
		defer close(done)

		c.checkAvailability(lc.Context())

		ticker := time.NewTicker(c.cfg.ProbeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				c.checkAvailability(lc.Context())
			}
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
	})

	return nil
}

func (c *client) Analyze(ctx context.Context, req Request, instructions string) *Result {
	if !c.available.Load() {
		c.logger.Debug("inference unavailable, using rule-based fallback", "title", req.Title)
		return c.fallback.Analyze(req)
	}

	result, err := c.infer(ctx, req, instructions)
	if err != nil {
		c.logger.Warn("inference call failed, using rule-based fallback",
			"title", req.Title,
			"error", err,
		)
		return c.fallback.Analyze(req)
	}

	return result
}

func (c *client) infer(ctx context.Context, req Request, instructions string) (*Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	a, err := agent.New(&c.agent)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	prompt, err := composePrompt(req, instructions)
	if err != nil {
		return nil, err
	}

	resp, err := a.Chat(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	result, err := formatting.Parse[Result](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	result.RuleBased = false
	result.Normalize()
	return &result, nil
}

func composePrompt(req Request, instructions string) (string, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize analysis request: %w", err)
	}
	return instructions + "\n\nActivity to analyze:\n\n" + string(payload), nil
}

// checkAvailability probes the provider base URL. Reachability is the only
// criterion: any HTTP response means the capability endpoint is up. Flushes
// read the last observed state and never wait on a fresh probe.
func (c *client) checkAvailability(ctx context.Context) {
	base := c.baseURL()
	if base == "" {
		c.setAvailable(false)
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.probe.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, base, nil)
	if err != nil {
		c.setAvailable(false)
		return
	}

	resp, err := c.probe.Do(req)
	if err != nil {
		c.setAvailable(false)
		return
	}
	resp.Body.Close()

	c.setAvailable(true)
}

func (c *client) setAvailable(v bool) {
	if c.available.Swap(v) != v {
		c.logger.Info("inference availability changed", "available", v)
	}
}

func (c *client) baseURL() string {
	if c.agent.Provider == nil {
		return ""
	}
	return c.agent.Provider.BaseURL
}
