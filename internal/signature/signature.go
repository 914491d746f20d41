package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier authenticates payment-completion claims coming from the payment
// gateway. The gateway signs `orderRef|payRef` with HMAC-SHA256 under a
// shared secret and sends the hex digest alongside the webhook.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Digest computes the expected hex signature for a claim.
func (v *Verifier) Digest(orderReferenceID, paymentReferenceID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderReferenceID + "|" + paymentReferenceID))

	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the claimed signature matches the one recomputed
// under the shared secret. Comparison is constant-time. A mismatch is never
// retried; callers treat it as a security event.
func (v *Verifier) Verify(orderReferenceID, paymentReferenceID, claimedSignature string) bool {
	expected := v.Digest(orderReferenceID, paymentReferenceID)

	return hmac.Equal([]byte(expected), []byte(claimedSignature))
}
