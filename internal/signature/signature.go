package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes HMAC-SHA256 over payload with secret and returns it as a
// lowercase hex string, which is the encoding razorpay uses everywhere.
func Sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func equal(expected, got string) bool {
	return hmac.Equal([]byte(expected), []byte(got))
}

// VerifyPayment checks the checkout callback signature, computed over
// "{orderID}|{paymentID}" with the API key secret.
func VerifyPayment(secret, orderID, paymentID, got string) bool {
	return equal(Sign(secret, orderID+"|"+paymentID), got)
}

// VerifySubscription checks the subscription callback signature, computed
// over "{paymentID}|{subscriptionID}" with the API key secret.
func VerifySubscription(secret, paymentID, subscriptionID, got string) bool {
	return equal(Sign(secret, paymentID+"|"+subscriptionID), got)
}

// VerifyWebhook checks a webhook delivery against the exact body bytes
// received. The secret is the webhook secret, not the API key secret.
// Callers must pass the raw body; re-serialized JSON will not match.
func VerifyWebhook(secret string, body []byte, got string) bool {
	return equal(Sign(secret, string(body)), got)
}
