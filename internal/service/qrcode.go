package service

import (
	"net/url"

	"github.com/skip2/go-qrcode"
)

type DefaultQRGenerator struct{}

func (DefaultQRGenerator) Generate(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, 256)
}

// RatingLink builds the URL the QR code points at.
func RatingLink(baseURL, userID, restaurantID, date string) string {
	query := url.Values{}
	query.Set("restaurant", restaurantID)
	query.Set("orderDate", date)
	query.Set("userId", userID)
	return baseURL + "?" + query.Encode()
}
