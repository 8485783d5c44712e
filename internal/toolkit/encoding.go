package toolkit

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strings"
)

func encodingTools() []*Tool {
	return []*Tool{
		{
			Name:        "base64-encode",
			Title:       "Base64 Encode",
			Category:    CategoryEncoding,
			Description: "Encode text as standard base64",
			Inputs:      []Input{textInput("Text to encode")},
			Fn:          textOp(func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }),
		},
		{
			Name:        "base64-decode",
			Title:       "Base64 Decode",
			Category:    CategoryEncoding,
			Description: "Decode base64 (padded or unpadded) into text",
			Inputs:      []Input{textInput("Base64 data to decode")},
			Fn:          base64Decode,
		},
		{
			Name:        "url-encode",
			Title:       "URL Encode",
			Category:    CategoryEncoding,
			Description: "Percent-encode text for use in a URL",
			Inputs:      []Input{textInput("Text to encode")},
			Fn:          textOp(urlEncode),
		},
		{
			Name:        "url-decode",
			Title:       "URL Decode",
			Category:    CategoryEncoding,
			Description: "Decode percent-encoded text",
			Inputs:      []Input{textInput("Percent-encoded text")},
			Fn:          urlDecode,
		},
		{
			Name:        "hex-encode",
			Title:       "Hex Encode",
			Category:    CategoryEncoding,
			Description: "Encode text as lowercase hexadecimal",
			Inputs:      []Input{textInput("Text to encode")},
			Fn:          textOp(func(s string) string { return hex.EncodeToString([]byte(s)) }),
		},
		{
			Name:        "hex-decode",
			Title:       "Hex Decode",
			Category:    CategoryEncoding,
			Description: "Decode hexadecimal into text",
			Inputs:      []Input{textInput("Hex data to decode")},
			Fn:          hexDecode,
		},
	}
}

func base64Decode(_ context.Context, in Inputs) (Result, error) {
	data := strings.TrimSpace(in.String(InputKey))

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		var rawErr error
		decoded, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
		if rawErr != nil {
			return Result{}, invalidInput(InputKey, "not valid base64: %v", err)
		}
	}

	return Result{Output: lossyString(decoded)}, nil
}

// urlEncode escapes every byte except unreserved characters. Spaces become
// %20 rather than '+'.
func urlEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func urlDecode(_ context.Context, in Inputs) (Result, error) {
	decoded, err := url.PathUnescape(in.String(InputKey))
	if err != nil {
		return Result{}, invalidInput(InputKey, "%v", err)
	}
	return Result{Output: decoded}, nil
}

func hexDecode(_ context.Context, in Inputs) (Result, error) {
	decoded, err := hex.DecodeString(strings.TrimSpace(in.String(InputKey)))
	if err != nil {
		return Result{}, invalidInput(InputKey, "not valid hex: %v", err)
	}
	return Result{Output: lossyString(decoded)}, nil
}

// lossyString replaces invalid UTF-8 with U+FFFD.
func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
