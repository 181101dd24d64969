package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrBadDataURL is returned for payloads that are not base64 data URLs.
var ErrBadDataURL = errors.New("malformed data url")

// DecodeDataURL splits "data:<mime>;base64,<payload>" and decodes the payload.
// A bare base64 string without the header is accepted and reported with an empty mime type.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", ErrBadDataURL
	}
	mime := ""
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, body, ok := strings.Cut(s, ",")
		if !ok {
			return nil, "", ErrBadDataURL
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", ErrBadDataURL
		}
		mime = strings.TrimSuffix(meta, ";base64")
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Join(ErrBadDataURL, err)
	}
	if len(data) == 0 {
		return nil, "", ErrBadDataURL
	}
	return data, mime, nil
}
