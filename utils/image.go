package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps uploaded artwork
const MaxImageBytes = 5 << 20

var (
	ErrImageType = errors.New("image must be JPG, PNG or WEBP")
	ErrImageSize = errors.New("image must be at most 5MB")
	ErrImageRead = errors.New("failed to read image")
)

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// SanitizeImage validates an uploaded image and returns bytes safe to store with
// the extension to use. JPG and PNG are decoded and re-encoded to drop metadata
// and embedded payloads; WEBP is passed through after a content sniff.
func SanitizeImage(file multipart.File, header *multipart.FileHeader) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return nil, "", ErrImageType
	}
	if header.Size > MaxImageBytes {
		return nil, "", ErrImageSize
	}

	raw, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return nil, "", ErrImageRead
	}
	if len(raw) > MaxImageBytes {
		return nil, "", ErrImageSize
	}
	detected := http.DetectContentType(raw)

	if ext == ".webp" || detected == "image/webp" {
		if detected != "image/webp" {
			return nil, "", ErrImageType
		}
		return raw, ".webp", nil
	}
	if detected != "image/jpeg" && detected != "image/png" {
		return nil, "", ErrImageType
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", ErrImageType
	}
	var out bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", err
		}
		return out.Bytes(), ".jpg", nil
	case "png":
		if err := png.Encode(&out, img); err != nil {
			return nil, "", err
		}
		return out.Bytes(), ".png", nil
	}
	return nil, "", ErrImageType
}
