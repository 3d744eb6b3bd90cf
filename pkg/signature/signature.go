package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Compute returns the hex-encoded HMAC-SHA256 of "orderID|paymentID" under secret.
// This is the signature format the payment provider attaches to settlement callbacks.
func Compute(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the expected HMAC for the
// orderID/paymentID pair. The comparison is constant time.
func Verify(orderID, paymentID, sig, secret string) bool {
	expected := Compute(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(sig))
}
