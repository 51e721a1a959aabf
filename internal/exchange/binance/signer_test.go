package binance

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Example from the Binance signed endpoint documentation.
func TestSignKnownVector(t *testing.T) {
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	payload := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"

	assert.Equal(t, "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71", sign(secret, payload))
}

func TestSignedQueryAppendsSignatureOfEncodedParams(t *testing.T) {
	params := url.Values{}
	params.Set("tradeType", "BUY")
	params.Set("page", "1")

	q := signedQuery(params, "s3cret")

	assert.True(t, strings.HasPrefix(q, "page=1&tradeType=BUY&signature="))
	assert.Equal(t, "page=1&tradeType=BUY&signature="+sign("s3cret", "page=1&tradeType=BUY"), q)
}
