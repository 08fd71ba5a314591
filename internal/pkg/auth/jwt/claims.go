package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token claims for Chatty.
// The token is the trust boundary between the external auth layer and the
// messaging core: every authenticated HTTP request and every WebSocket
// handshake carries one, and the core takes the embedded user ID as verified.
type Payload struct {
	// StandardClaims embeds the JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), used for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the unique identifier of the authenticated user.
	ID string `json:"id"`
}
