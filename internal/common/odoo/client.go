// Package odoo implements the XML-RPC client for the Odoo external API:
// authentication, model calls, livechat fetch, partner lookup and mailing
// contact maintenance.
package odoo

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/sony/gobreaker"

	"chatleads/internal/common/config"
	"chatleads/internal/common/errors"
	"chatleads/internal/common/logger"
	"chatleads/internal/common/metrics"
)

// Client talks to an Odoo instance over /xmlrpc/2. All model calls flow
// through a circuit breaker so a dead Odoo fails fast instead of stalling
// a whole run.
type Client struct {
	cfg     config.OdooConfig
	common  *xmlrpc.Client
	object  *xmlrpc.Client
	breaker *gobreaker.CircuitBreaker
	log     logger.Logger

	mu  sync.Mutex
	uid int64
}

func NewClient(cfg config.OdooConfig, log logger.Logger) (*Client, error) {
	timeout := config.GetDuration(cfg.RequestTimeout)
	transport := &http.Transport{ResponseHeaderTimeout: timeout}

	common, err := xmlrpc.NewClient(cfg.URL+"/xmlrpc/2/common", transport)
	if err != nil {
		return nil, errors.NewOdooConnectionFailedError(err)
	}
	object, err := xmlrpc.NewClient(cfg.URL+"/xmlrpc/2/object", transport)
	if err != nil {
		return nil, errors.NewOdooConnectionFailedError(err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "odoo",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Odoo circuit breaker state change", map[string]interface{}{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})

	return &Client{
		cfg:     cfg,
		common:  common,
		object:  object,
		breaker: breaker,
		log:     log,
	}, nil
}

// Authenticate resolves and caches the user ID. Odoo signals bad
// credentials by returning false instead of an integer.
func (c *Client) Authenticate(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uid != 0 {
		return c.uid, nil
	}

	var reply interface{}
	args := []interface{}{c.cfg.Database, c.cfg.Username, c.cfg.APIKey, map[string]interface{}{}}
	if err := c.call(ctx, c.common, "authenticate", args, &reply); err != nil {
		return 0, errors.NewOdooConnectionFailedError(err)
	}

	uid, ok := toInt64(reply)
	if !ok || uid <= 0 {
		return 0, errors.NewOdooAuthFailedError(fmt.Sprintf("database: %s, username: %s", c.cfg.Database, c.cfg.Username))
	}

	c.uid = uid
	c.log.Info("Odoo authentication succeeded", map[string]interface{}{
		"database": c.cfg.Database,
		"uid":      uid,
	})
	return uid, nil
}

// ExecuteKw performs a model method call (execute_kw) with positional args
// and optional keyword args, decoding into reply.
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}, reply interface{}) error {
	uid, err := c.Authenticate(ctx)
	if err != nil {
		return err
	}

	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	callArgs := []interface{}{c.cfg.Database, uid, c.cfg.APIKey, model, method, args, kwargs}

	start := time.Now()
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.call(ctx, c.object, "execute_kw", callArgs, reply)
	})
	metrics.OdooRequestDuration.WithLabelValues(model, method).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OdooRequests.WithLabelValues(model, method, "error").Inc()
		if ctx.Err() == context.DeadlineExceeded {
			return errors.NewOdooTimeoutError(model)
		}
		return errors.NewOdooFetchFailedError(model, err)
	}
	metrics.OdooRequests.WithLabelValues(model, method, "ok").Inc()
	return nil
}

// call runs one RPC honoring context cancellation. The underlying client
// has no context support, so the call is raced against ctx.
func (c *Client) call(ctx context.Context, rpc *xmlrpc.Client, method string, args, reply interface{}) error {
	done := make(chan error, 1)
	go func() {
		done <- rpc.Call(method, args, reply)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// SearchReadAll pages through search_read results until the server returns
// a short page, batching by the configured search batch size.
func (c *Client) SearchReadAll(ctx context.Context, model string, domain []interface{}, fields []string, order string) ([]Record, error) {
	batch := c.cfg.SearchBatch
	var all []Record

	for offset := 0; ; offset += batch {
		kwargs := map[string]interface{}{
			"fields": fields,
			"offset": offset,
			"limit":  batch,
		}
		if order != "" {
			kwargs["order"] = order
		}

		var page []Record
		if err := c.ExecuteKw(ctx, model, "search_read", []interface{}{domain}, kwargs, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < batch {
			return all, nil
		}
	}
}

// ReadAll reads records by ID in configured batches.
func (c *Client) ReadAll(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error) {
	batch := c.cfg.ReadBatch
	var all []Record

	for start := 0; start < len(ids); start += batch {
		end := start + batch
		if end > len(ids) {
			end = len(ids)
		}

		var page []Record
		args := []interface{}{ids[start:end]}
		kwargs := map[string]interface{}{"fields": fields}
		if err := c.ExecuteKw(ctx, model, "read", args, kwargs, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
	}
	return all, nil
}
