package gateway

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const defaultMIMEType = "image/jpeg"

var ErrInvalidImage = errors.New("invalid image data")

// Image is decoded picture bytes plus their MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI accepts "data:<mime>;base64,<body>" or a bare base64 body.
// Anything up to the first comma is treated as the header.
func ParseDataURI(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, fmt.Errorf("%w: empty", ErrInvalidImage)
	}

	mime := defaultMIMEType
	body := s
	if i := strings.IndexByte(s, ','); i >= 0 {
		header := s[:i]
		body = s[i+1:]
		if strings.HasPrefix(header, "data:") {
			if m := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"); m != "" {
				mime = m
			}
		}
	}
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, mime)
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	return Image{MIMEType: mime, Data: data}, nil
}

func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

func (i Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = defaultMIMEType
	}
	return "data:" + mime + ";base64," + i.Base64()
}

// extension is used for the upload filename.
func (i Image) extension() string {
	switch i.MIMEType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	}
	return "jpg"
}
