package ocr

import "strconv"

// WithPageSegMode sets Tesseract's page segmentation mode. Mode 6 (assume a
// single uniform block of text) works well for cropped annotation regions.
func WithPageSegMode(mode int) Option {
	return WithVariable("tessedit_pageseg_mode", strconv.Itoa(mode))
}

// WithCharWhitelist restricts recognition to the provided characters.
func WithCharWhitelist(chars string) Option {
	return WithVariable("tessedit_char_whitelist", chars)
}
