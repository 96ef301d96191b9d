package libs

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrLabelSize = 256

// ProductQRCode renders a PNG label that a POS scanner reads back as code.
func ProductQRCode(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("product has no code")
	}
	png, err := qrcode.Encode(code, qrcode.Medium, qrLabelSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
