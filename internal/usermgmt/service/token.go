package service

import (
	"strconv"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
)

// TokenService issues HS256 bearer tokens. Tokens are stateless; logging
// out does not revoke them.
type TokenService struct {
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
	Clock  Clock
}

// GenerateToken signs a token for user with subject = id, name = email and
// role = role id.
func (s *TokenService) GenerateToken(user domain.User) (domain.AccessToken, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}
	now := s.Clock.now()

	claims := jwtx.NewUserClaims(
		strconv.FormatInt(user.ID, 10),
		user.Email,
		strconv.FormatInt(user.RoleID, 10),
		ttl,
		s.Issuer,
		now,
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.AccessToken{}, err
	}
	return domain.AccessToken{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: now.Add(ttl),
	}, nil
}
