package qr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestPaymentURI(t *testing.T) {
	r := Renderer{UPIAddress: "shop@upi", PayeeName: "PremiumBot"}
	uri := r.PaymentURI("1 Month YouTube Premium", 20)
	assert.Equal(t, "upi://pay?pa=shop%40upi&pn=PremiumBot&am=20&tn=1+Month+YouTube+Premium", uri)
}

func TestPaymentURIDefaults(t *testing.T) {
	uri := Renderer{}.PaymentURI("Plan", 5)
	assert.Contains(t, uri, "pa=example%40upi")
	assert.Contains(t, uri, "pn=PremiumBot")
}

func TestRenderProducesPNG(t *testing.T) {
	r := Renderer{UPIAddress: "shop@upi"}
	img, err := r.Render("3 Months YouTube Premium", 55)
	require.NoError(t, err)
	require.True(t, len(img) > 8)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}
