// Package services holds the server business logic. Every record is validated
// with the schema package before it is written and after it is read back.
package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/cryptox"
	"github.com/dmitrijs2005/osmnotes/internal/logging"
	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/dmitrijs2005/osmnotes/internal/schema"
	"github.com/dmitrijs2005/osmnotes/internal/server/auth"
	"github.com/dmitrijs2005/osmnotes/internal/server/config"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/osmnotes/internal/timex"
)

// UserService signs users up and in and resolves session tokens.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	log           logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	namespace     string
	database      string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		log:           log.With("service", "users"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		namespace:     cfg.Namespace,
		database:      cfg.Database,
	}
}

// dummyHash is verified against when the user does not exist so that
// unknown and known osm ids take the same time to reject.
var dummyHash = sync.OnceValue(func() string {
	return cryptox.HashPassword(common.GenerateRandByteArray(cryptox.DerivedPasswordSize))
})

func (s *UserService) checkScope(ns, db string) error {
	if ns != s.namespace || db != s.database {
		return common.ErrorUnauthorized
	}
	return nil
}

// Signup registers a new OSM identity. The password in params is the client
// derived value; only its argon2id hash is stored.
func (s *UserService) Signup(ctx context.Context, params models.SignupParams) (*models.UserRecord, error) {
	if err := schema.ValidateSignup(params); err != nil {
		return nil, err
	}
	if err := s.checkScope(params.Namespace, params.Database); err != nil {
		return nil, err
	}

	user := models.UserRecord{
		ID:        models.NewUserID(),
		OsmID:     params.OsmID,
		Password:  cryptox.HashPassword(params.Password),
		CreatedAt: timex.Now(),
	}
	if params.EncryptedOpenAIKey != nil {
		user.EncryptedOpenAIKey = bytes.Clone(params.EncryptedOpenAIKey)
	}
	if err := schema.ValidateUserRecord(user); err != nil {
		return nil, err
	}

	if err := s.repomanager.Users(s.db).Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.log.Info(ctx, "signup for existing osm id", "osm_id", user.OsmID)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user signed up", "user_id", user.ID, "osm_id", user.OsmID)
	return &user, nil
}

// SignupJSON validates a raw signup payload and runs Signup.
func (s *UserService) SignupJSON(ctx context.Context, body []byte) (*models.UserRecord, error) {
	params, err := schema.SignupParams.ParseJSON(body)
	if err != nil {
		return nil, err
	}
	return s.Signup(ctx, params)
}

// Signin checks the derived password and returns a session token. Unknown
// users and wrong passwords are indistinguishable: both yield
// common.ErrorUnauthorized.
func (s *UserService) Signin(ctx context.Context, params models.SigninParams) (models.AuthToken, error) {
	if err := schema.ValidateSignin(params); err != nil {
		return "", err
	}
	if err := s.checkScope(params.Namespace, params.Database); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)

	raw, err := repo.GetByOsmID(ctx, params.OsmID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(dummyHash(), params.Password)
			s.log.Warn(ctx, "signin failed", "osm_id", params.OsmID)
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	user, err := schema.ParseUserRecord(raw)
	if err != nil {
		s.log.Error(ctx, "stored user record is invalid", "osm_id", params.OsmID, "error", err)
		return "", fmt.Errorf("error loading user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(user.Password, params.Password)
	if err != nil {
		s.log.Error(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
		return "", common.ErrorInternal
	}
	if !ok {
		s.log.Warn(ctx, "signin failed", "osm_id", params.OsmID)
		return "", common.ErrorUnauthorized
	}

	if err := repo.TouchLastLogin(ctx, user.ID, timex.Now()); err != nil {
		return "", fmt.Errorf("error updating last login: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, s.namespace, s.database, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	if _, err := schema.AuthToken.Parse(string(token)); err != nil {
		return "", common.ErrorInternal
	}

	s.log.Info(ctx, "user signed in", "user_id", user.ID)
	return token, nil
}

// SigninJSON validates a raw signin payload and runs Signin.
func (s *UserService) SigninJSON(ctx context.Context, body []byte) (models.AuthToken, error) {
	params, err := schema.SigninParams.ParseJSON(body)
	if err != nil {
		return "", err
	}
	return s.Signin(ctx, params)
}

// Authenticate resolves a session token to the id of an existing user.
func (s *UserService) Authenticate(ctx context.Context, token models.AuthToken) (models.UserID, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return "", err
	}
	if err := s.checkScope(claims.Namespace, claims.Database); err != nil {
		return "", common.ErrInvalidToken
	}

	if _, err := s.repomanager.Users(s.db).Get(ctx, claims.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}
	return claims.UserID, nil
}
