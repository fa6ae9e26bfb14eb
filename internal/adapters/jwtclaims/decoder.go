package jwtclaims

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Decoder reads JWT claims without checking the signature. Tokens issued
// for Microsoft Graph are meant for Graph, so this is only ever used to
// show or label them.
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder creates a new claims decoder
func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

// Decode returns the claims of token
func (d *Decoder) Decode(token string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token claims: %w", err)
	}
	return claims, nil
}
