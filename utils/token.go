package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// DepartmentClaim is the capability granted by the access gate: the bearer
// may edit rows of Department. There is no user identity behind it.
type DepartmentClaim struct {
	Department string `json:"department"`
	jwt.StandardClaims
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "DRCM-Secret"
	}
	return secret
}

// TokenLifespan is how long an access token stays valid (TOKEN_HOUR_LIFESPAN).
func TokenLifespan() time.Duration {
	hours := EnvInt("TOKEN_HOUR_LIFESPAN", 8)
	if hours <= 0 {
		hours = 8
	}
	return time.Hour * time.Duration(hours)
}

// JwtGenerate returns a signed token and its id (used to key the edit session).
func JwtGenerate(department string) (string, string, error) {
	if department == "" {
		return "", "", errors.New("department is required")
	}
	now := time.Now()
	tokenId := uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &DepartmentClaim{
		Department: department,
		StandardClaims: jwt.StandardClaims{
			Id:        tokenId,
			ExpiresAt: now.Add(TokenLifespan()).Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	token, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", "", err
	}
	return token, tokenId, nil
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &DepartmentClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}
