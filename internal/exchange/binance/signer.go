package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// sign returns the hex HMAC-SHA256 of payload keyed with the API secret.
func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// signedQuery encodes params and appends the signature of exactly that
// encoding, so the string the server verifies is the string that was signed.
func signedQuery(params url.Values, secret string) string {
	query := params.Encode()
	return query + "&signature=" + sign(secret, query)
}
