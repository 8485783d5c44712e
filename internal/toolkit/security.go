package toolkit

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
)

func hashOp(newHash func() hash.Hash) Operation {
	return textOp(func(s string) string {
		h := newHash()
		h.Write([]byte(s))
		return hex.EncodeToString(h.Sum(nil))
	})
}

func securityTools() []*Tool {
	digest := func(name, title string, newHash func() hash.Hash) *Tool {
		return &Tool{
			Name:        name,
			Title:       title,
			Category:    CategorySecurity,
			Description: title + " digest of the input, hex encoded",
			Inputs:      []Input{textInput("Text to hash")},
			Fn:          hashOp(newHash),
		}
	}

	keyed := func(name, title string, newHash func() hash.Hash) *Tool {
		return &Tool{
			Name:        name,
			Title:       title,
			Category:    CategorySecurity,
			Description: title + " message authentication code of the input, hex encoded",
			Inputs: []Input{
				textInput("Message to sign"),
				{Name: "key", Description: "Secret key", Type: "string", Required: true},
			},
			Fn: hmacOp(newHash),
		}
	}

	return []*Tool{
		digest("hash-md5", "MD5", md5.New),
		digest("hash-sha1", "SHA-1", sha1.New),
		digest("hash-sha256", "SHA-256", sha256.New),
		digest("hash-sha512", "SHA-512", sha512.New),
		keyed("hmac-sha256", "HMAC-SHA256", sha256.New),
		keyed("hmac-sha512", "HMAC-SHA512", sha512.New),
	}
}

func hmacOp(newHash func() hash.Hash) Operation {
	return func(_ context.Context, in Inputs) (Result, error) {
		mac := hmac.New(newHash, []byte(in.String("key")))
		mac.Write([]byte(in.String(InputKey)))
		return Result{Output: hex.EncodeToString(mac.Sum(nil))}, nil
	}
}
