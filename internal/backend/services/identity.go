// Package services contains the backend business logic. This file implements
// IdentityService, the identity provider: account registration, password
// sign-in, refresh-token rotation and session lookup.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/backend/auth"
	"github.com/dmitrijs2005/socialclone/internal/backend/config"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/repomanager"
	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/dbx"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

const minPasswordLength = 6

type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	signupTokenValidityDuration  time.Duration
	now                          func() time.Time
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		signupTokenValidityDuration:  cfg.SignupTokenValidityDuration,
		now:                          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new identity and returns it together with a sign-up
// token scoped to inserting that identity's profile. No session is opened.
func (s *IdentityService) SignUp(ctx context.Context, email, password string) (*models.Identity, string, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || len(password) < minPasswordLength {
		return nil, "", common.ErrorValidation
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	repo := s.repomanager.Identities(s.db)
	identity, err := repo.Create(ctx, &models.Identity{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", common.ErrorAlreadyExists
		}
		return nil, "", fmt.Errorf("error creating identity: %w", err)
	}

	token, err := auth.GenerateToken(identity.ID, auth.ScopeSignup, s.jwtSecret, s.signupTokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return identity, token, nil
}

// SignIn verifies the password and opens a session. Unknown accounts and
// wrong passwords are indistinguishable to the caller.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	repo := s.repomanager.Identities(s.db)
	identity, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !auth.CheckPasswordHash(password, identity.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}
	return s.openSession(ctx, identity, s.db)
}

// Refresh validates a refresh token, rotates it transactionally and returns
// a fresh session. Expired tokens yield ErrRefreshTokenExpired.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var session *models.Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		identity, err := s.repomanager.Identities(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		session, err = s.openSession(ctx, identity, tx)
		return err
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// SignOut forgets the refresh token. Access tokens expire on their own.
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// GetSession describes the identity behind an already validated access token.
func (s *IdentityService) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	identity, err := s.repomanager.Identities(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return &models.Session{UserID: identity.ID, Email: identity.Email}, nil
}

func (s *IdentityService) openSession(ctx context.Context, identity *models.Identity, tx dbx.DBTX) (*models.Session, error) {
	access, err := auth.GenerateToken(identity.ID, auth.ScopeSession, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, identity.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &models.Session{
		UserID:       identity.ID,
		Email:        identity.Email,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.accessTokenValidityDuration),
	}, nil
}
