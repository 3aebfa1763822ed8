package sdk

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"github.com/dmitrijs2005/socialclone/internal/wire"
	"google.golang.org/protobuf/types/known/emptypb"
)

// loadSession reads the cached session from the metadata store once per
// Client. A corrupt cache entry is dropped.
func (c *Client) loadSession(ctx context.Context) error {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	raw, err := c.store.Get(ctx, sessionKey)
	if err != nil {
		return err
	}

	var session *models.Session
	if raw != nil {
		var s models.Session
		if err := json.Unmarshal(raw, &s); err != nil || s.AccessToken == "" {
			c.logger.Warn(ctx, "dropping unreadable cached session", "err", err)
			_ = c.store.Delete(ctx, sessionKey)
		} else {
			session = &s
		}
	}

	c.mu.Lock()
	if !c.loaded {
		c.session = session
		c.loaded = true
	}
	c.mu.Unlock()
	return nil
}

func (c *Client) saveSession(ctx context.Context, s *models.Session) error {
	c.mu.Lock()
	c.session = s
	c.loaded = true
	c.mu.Unlock()

	if s == nil {
		return c.store.Delete(ctx, sessionKey)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, sessionKey, raw)
}

func (c *Client) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", ""
	}
	return c.session.AccessToken, c.session.RefreshToken
}

func (c *Client) cachedSession() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func sessionFromWire(r *wire.SessionResponse) *models.Session {
	return &models.Session{
		UserID:       r.UserID,
		Email:        r.Email,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    r.ExpiresAt,
	}
}

// refresh rotates the token pair. A rejected refresh token ends the session.
func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	resp, err := c.api.RefreshToken(ctx, &wire.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		err = mapError(err)
		if isSessionRejected(err) {
			c.dropSession(ctx)
		}
		return err
	}
	return c.saveSession(ctx, sessionFromWire(resp))
}

// refreshOnce rotates the tokens that were issued alongside used. Concurrent
// callers holding the same refresh token share one RefreshToken call, and a
// caller whose token was already rotated just picks up the new pair.
func (c *Client) refreshOnce(ctx context.Context, used string) error {
	_, err, _ := c.refreshGroup.Do(used, func() (any, error) {
		switch _, current := c.tokens(); current {
		case used:
			return nil, c.refresh(ctx, used)
		case "":
			return nil, common.ErrorUnauthorized
		}
		return nil, nil
	})
	return err
}

// dropSession forgets the local session and tells listeners.
func (c *Client) dropSession(ctx context.Context) {
	if c.cachedSession() == nil {
		return
	}
	if err := c.saveSession(ctx, nil); err != nil {
		c.logger.Error(ctx, "clearing cached session failed", "err", err)
	}
	c.notify(nil)
}

// CurrentSession returns the signed-in session, or nil when there is none
// or the backend no longer accepts it.
func (c *Client) CurrentSession(ctx context.Context) (*models.Session, error) {
	if err := c.loadSession(ctx); err != nil {
		return nil, err
	}
	if c.cachedSession() == nil {
		return nil, nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.GetSession(ctx, &emptypb.Empty{})
	if err != nil {
		err = mapError(err)
		if isSessionRejected(err) {
			c.logger.Info(ctx, "cached session rejected", "err", err)
			c.dropSession(ctx)
			return nil, nil
		}
		return nil, err
	}

	s := c.cachedSession()
	if s == nil {
		return nil, nil
	}
	s.UserID = resp.UserID
	s.Email = resp.Email
	return s, nil
}

// SignIn authenticates with email and password and opens a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.SignIn(ctx, &wire.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}

	session := sessionFromWire(resp)
	if err := c.saveSession(ctx, session); err != nil {
		c.logger.Error(ctx, "caching session failed", "err", err)
	}
	c.notify(session)
	return c.cachedSession(), nil
}

// SignUp registers a new identity and returns its id. No session is opened;
// the returned id may be used once to insert the matching profile.
func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.SignUp(ctx, &wire.SignUpRequest{Email: email, Password: password})
	if err != nil {
		return "", mapError(err)
	}

	c.mu.Lock()
	c.signupTokens[resp.UserID] = resp.SignupToken
	c.mu.Unlock()

	return resp.UserID, nil
}

// SignOut ends the session locally and revokes the refresh token remotely.
// The local session is cleared even if the remote call fails.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.loadSession(ctx); err != nil {
		return err
	}
	session := c.cachedSession()
	if session == nil {
		return nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.api.SignOut(ctx, &wire.SignOutRequest{RefreshToken: session.RefreshToken})
	c.dropSession(ctx)
	return mapError(err)
}

// OnSessionChange registers fn to run after the session opens or ends. The
// returned func unregisters it.
func (c *Client) OnSessionChange(fn func(*models.Session)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) notify(s *models.Session) {
	c.mu.Lock()
	fns := make([]func(*models.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		var arg *models.Session
		if s != nil {
			cp := *s
			arg = &cp
		}
		fn(arg)
	}
}
