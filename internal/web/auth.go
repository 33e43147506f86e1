package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// formSigner guards POST forms against cross-site submission. The secret
// lives for the process, so a restart invalidates open pages.
type formSigner struct {
	secret []byte
	token  string
}

const formPurpose = "musicalist.form.v1"

func newFormSigner() (*formSigner, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	f := &formSigner{secret: raw}
	f.token = f.sign(formPurpose)
	return f, nil
}

func (f *formSigner) sign(msg string) string {
	mac := hmac.New(sha256.New, f.secret)
	_, _ = mac.Write([]byte(msg))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (f *formSigner) issue() string { return f.token }

func (f *formSigner) verify(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	return hmac.Equal([]byte(token), []byte(f.token))
}
