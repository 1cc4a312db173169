package fetch

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

// decodeText converts a response body to a string using the charset
// declared in the Content-Type header, or one sniffed from the payload
// when the header is silent. Malformed bytes under a UTF-8 declaration
// are an error, not a silent replacement; legacy single-byte charsets
// accept any input by construction.
func decodeText(body []byte, contentType string) (string, string, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)

	if canonical, err := htmlindex.Name(enc); err == nil {
		name = canonical
	}
	if name == "utf-8" {
		if !utf8.Valid(body) {
			return "", name, fmt.Errorf("body is not valid utf-8")
		}
		return string(body), name, nil
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", name, fmt.Errorf("decode %s body: %w", name, err)
	}
	return string(decoded), name, nil
}
