package services

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const operatorRole = "operator"

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// OperatorService authenticates the single configured back-office operator.
type OperatorService struct {
	email string
	hash  string
	tm    *auth.TokenManager
}

func NewOperatorService(email, passwordHash string, tm *auth.TokenManager) *OperatorService {
	return &OperatorService{email: strings.ToLower(strings.TrimSpace(email)), hash: passwordHash, tm: tm}
}

func (s *OperatorService) Login(email, password string) (TokenPair, error) {
	if s.email == "" || s.hash == "" {
		return TokenPair{}, ErrInvalidCredentials
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) != 1 {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, s.hash); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issue(s.email)
}

func (s *OperatorService) Refresh(refreshToken string) (TokenPair, error) {
	claims, isRefresh, err := s.tm.ParseAny(refreshToken)
	if err != nil || !isRefresh {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issue(claims.Operator)
}

func (s *OperatorService) issue(operator string) (TokenPair, error) {
	access, refresh, exp, err := s.tm.GeneratePair(operator, operatorRole)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}
