package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid indica assinatura inválida ou token malformado.
	ErrTokenInvalid = errors.New("token inválido")
	// ErrTokenExpired indica token expirado (assinatura correta).
	ErrTokenExpired = errors.New("token expirado")
)

// AccessClaims carrega o snapshot de identidade embutido no token de acesso.
type AccessClaims struct {
	Nome          string `json:"nome"`
	Papel         string `json:"papel"`
	TituloEleitor string `json:"titulo_eleitor"`
	jwt.RegisteredClaims
}

// RefreshClaims carrega apenas o identificador do sujeito.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Identity descreve os campos desnormalizados no token de acesso.
type Identity struct {
	ID            uuid.UUID
	Nome          string
	Papel         string
	TituloEleitor string
}

// JWTManager encapsula geração e validação de tokens de acesso e refresh,
// cada um com segredo e TTL próprios.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTManager cria o gerenciador com segredos e TTLs configurados.
func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// GenerateAccessToken cria um JWT HS256 de curta duração com o snapshot de
// identidade para leituras baratas nos handlers.
func (m *JWTManager) GenerateAccessToken(id Identity) (string, error) {
	now := time.Now().UTC()

	claims := AccessClaims{
		Nome:          id.Nome,
		Papel:         id.Papel,
		TituloEleitor: id.TituloEleitor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// GenerateRefreshToken cria um JWT HS256 de longa duração contendo somente o
// identificador do sujeito.
func (m *JWTManager) GenerateRefreshToken(subject uuid.UUID) (string, time.Time, error) {
	now := time.Now().UTC()
	expires := now.Add(m.refreshTTL)

	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseAccessToken verifica assinatura e expiração do token de acesso.
func (m *JWTManager) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenString, claims, m.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifica assinatura e expiração do token de refresh.
func (m *JWTManager) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, m.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *JWTManager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
