package i

import "time"

// Tokenizer issues and verifies the bearer tokens that identify players on the HTTP
// and gRPC surfaces.
type Tokenizer interface {
	// Generate signs claims into a token that expires after expTime.
	Generate(claims map[string]interface{}, expTime time.Duration) (string, error)

	// Decode verifies a token and returns its claims. Expired, forged or foreign
	// tokens fail.
	Decode(token string) (map[string]interface{}, error)
}
