package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"myo_monitor/internal/repository"
)

const (
	defaultTokenTTL   = 12 * time.Hour
	tokenIssuer       = "myo_monitor"
	minPasswordLen    = 8
	maxOperatorName   = 32
	minOperatorName   = 3
	operatorNameChars = "-_."
)

// AuthOptions configures token issuance.
type AuthOptions struct {
	SigningKey string
	TokenTTL   time.Duration
}

var (
	ErrInvalidOperatorName = errors.New("operator name must be 3-32 letters, digits or -_.")
	ErrWeakPassword        = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	ErrOperatorExists      = errors.New("operator already registered")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrUserNotFound        = errors.New("operator not found")
	ErrInvalidToken        = errors.New("invalid token")
)

// AuthService registers operators and issues the bearer tokens that gate
// every command reaching the device.
type AuthService struct {
	authRepo repository.Authorization
	key      []byte
	ttl      time.Duration
	parser   *jwt.Parser
}

func NewAuthService(repo repository.Authorization, opts AuthOptions) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	return &AuthService{
		authRepo: repo,
		key:      []byte(opts.SigningKey),
		ttl:      opts.TokenTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// OperatorClaims identify the operator behind a control request.
type OperatorClaims struct {
	jwt.RegisteredClaims
	OperatorID int    `json:"operator_id"`
	Operator   string `json:"operator"`
}

// SignUp validates the credentials, hashes the password and stores the operator.
func (s *AuthService) SignUp(username, password string) (int, error) {
	name, err := normalizeOperatorName(username)
	if err != nil {
		return 0, err
	}
	if len(password) < minPasswordLen {
		return 0, ErrWeakPassword
	}
	existing, err := s.authRepo.GetByUsername(name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrOperatorExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.authRepo.Create(name, string(hash))
}

// GenerateToken checks the operator's credentials and returns a signed token.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	name, err := normalizeOperatorName(username)
	if err != nil {
		return "", ErrUserNotFound
	}
	op, err := s.authRepo.GetByUsername(name)
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidPassword
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   op.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: op.ID,
		Operator:   op.Username,
	})
	return token.SignedString(s.key)
}

// ParseToken verifies an HS256 token from this service and returns the
// operator ID. Every failure wraps ErrInvalidToken.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	claims := &OperatorClaims{}
	_, err := s.parser.ParseWithClaims(accessToken, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.OperatorID <= 0 {
		return 0, fmt.Errorf("%w: missing operator", ErrInvalidToken)
	}
	return claims.OperatorID, nil
}

// normalizeOperatorName trims and lowercases name and checks its alphabet.
func normalizeOperatorName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < minOperatorName || len(name) > maxOperatorName {
		return "", ErrInvalidOperatorName
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(operatorNameChars, r) {
			return "", ErrInvalidOperatorName
		}
	}
	return name, nil
}
