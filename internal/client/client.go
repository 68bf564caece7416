package client

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shef088/Hospital-Management-System-sub001/internal/cache"
	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
	"github.com/shef088/Hospital-Management-System-sub001/internal/guard"
	"github.com/shef088/Hospital-Management-System-sub001/internal/jobs"
	"github.com/shef088/Hospital-Management-System-sub001/internal/realtime"
	"github.com/shef088/Hospital-Management-System-sub001/internal/resources"
	"github.com/shef088/Hospital-Management-System-sub001/internal/session"
	"github.com/shef088/Hospital-Management-System-sub001/internal/transport"
)

// Client is the single context handle threading every component together.
// There is no ambient global state: construct one Client and pass it (or
// the parts you need) down.
type Client struct {
	Config    *config.AppConfig
	Log       zerolog.Logger
	Sessions  *session.Store
	Transport *transport.Client
	Cache     *cache.Store
	Resources *resources.Endpoints
	Guard     *guard.Guard
	Realtime  *realtime.Channel

	janitor *jobs.Janitor
	unsub   func()
}

// New wires the full stack: token store → session → transport → cache →
// endpoints → guard → realtime → janitor, then hydrates the session from
// the persisted token. Cross-component reactions (cache clear on logout,
// channel lifecycle) are wired here as session subscriptions so no
// component reaches into another's state.
func New(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (*Client, error) {
	tokens, err := session.NewTokenStore(cfg.TokenStore)
	if err != nil {
		return nil, err
	}

	sessions := session.New(tokens, logger)
	httpClient := transport.New(cfg.API, sessions.Token, logger)
	sessions.UseTransport(httpClient)
	httpClient.SetAuthFailureHook(func() {
		sessions.Expire("server rejected token")
	})

	store := cache.New(cfg.Cache, logger)
	endpoints := resources.New(httpClient, store, logger)

	channel := realtime.New(cfg.Realtime, sessions.Token, logger)
	channel.SetSink(endpoints.ApplyNotification)
	channel.SetAuthRejectHook(func() {
		sessions.Expire("realtime authentication rejected")
	})

	c := &Client{
		Config:    cfg,
		Log:       logger,
		Sessions:  sessions,
		Transport: httpClient,
		Cache:     store,
		Resources: endpoints,
		Guard:     guard.New(sessions),
		Realtime:  channel,
		janitor:   jobs.NewJanitor(cfg.Cache, store, logger),
	}

	c.unsub = sessions.Subscribe(func(sess session.Session) {
		if sess.Authenticated() {
			channel.Start()
			return
		}
		store.Clear()
		channel.Disconnect()
	})

	if err := c.janitor.Start(); err != nil {
		logger.Error().Err(err).Msg("janitor start failed")
	}

	sessions.Hydrate(ctx)

	return c, nil
}

// Close tears down the realtime channel, the janitor, and the session's
// token store. The session itself is left as persisted.
func (c *Client) Close() error {
	if c.unsub != nil {
		c.unsub()
	}
	c.Realtime.Disconnect()
	c.janitor.Stop()
	return c.Sessions.Close()
}
