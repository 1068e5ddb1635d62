package webserver

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/khadamati/khadamati/internal/requests"
	"github.com/khadamati/khadamati/pkg/common"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// JwtClaims carries the caller identity. Tokens are issued by the account
// service; this server only verifies them.
type JwtClaims struct {
	UserID common.FlexID `json:"user_id"` // number or string
	Role   string        `json:"role"`
	jwt.RegisteredClaims
}

func (c *JwtClaims) Actor() requests.Actor {
	return requests.Actor{ID: int64(c.UserID), Role: c.Role}
}

// CurrentActor returns the verified caller of the request.
func CurrentActor(c echo.Context) (requests.Actor, error) {
	token, ok := c.Get(userKey).(*jwt.Token)
	if !ok || token == nil {
		return requests.Actor{}, errors.Wrap(requests.ErrUnauthorized, "no identity on request")
	}
	claims, ok := token.Claims.(*JwtClaims)
	if !ok || claims.UserID == 0 {
		return requests.Actor{}, errors.Wrap(requests.ErrUnauthorized, "token carries no user")
	}
	switch claims.Role {
	case requests.RoleCustomer, requests.RoleProvider, requests.RoleAdmin:
	default:
		return requests.Actor{}, errors.Wrapf(requests.ErrUnauthorized, "unknown role %q", claims.Role)
	}
	return claims.Actor(), nil
}
