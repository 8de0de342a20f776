package main

import (
	"github.com/shazow/wifiqr/wifi"
	qrcode "github.com/skip2/go-qrcode"
)

// GenerateWifiQRCode builds the Wi-Fi connection string for ssid and
// passphrase and returns it along with a terminal-friendly QR code.
func GenerateWifiQRCode(ssid, passphrase string) (payload string, code string, err error) {
	payload, err = wifi.EncodePayload(ssid, passphrase)
	if err != nil {
		return "", "", err
	}

	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", "", err
	}
	return payload, q.ToSmallString(false), nil
}
