package account

import (
	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"

	"github.com/tsongo/darasa/core"
)

// Claims represents the session claims transmitted via a signed token.
// The token is opaque to callers; they only need it to be unforgeable and
// bound to the account id and an issuance time.
type Claims struct {
	jwt.StandardClaims
	Handle    string `json:"handle,omitempty"`
	IsTeacher bool   `json:"is_teacher,omitempty"`
	IsStudent bool   `json:"is_student,omitempty"`
}

func sessionClaims(acct Account, conf *core.Config) *Claims {
	now := nowFunc()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   acct.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Handle:    acct.Handle,
		IsTeacher: acct.IsTeacher(),
		IsStudent: acct.IsStudent(),
	}
}

func makeSessionToken(acct Account, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims(acct, conf))
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing session token")
	}
	return ss, nil
}

// ParseSessionToken validates a session token string and returns its claims.
func ParseSessionToken(tokenStr string, conf *core.Config) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
