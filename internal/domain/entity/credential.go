package entity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidQR is returned when a QR payload is not a untis setschool link.
var ErrInvalidQR = errors.New("invalid untis qr data")

// CredentialKind names the variant stored for a user.
type CredentialKind string

const (
	CredentialPassword CredentialKind = "password"
	CredentialQR       CredentialKind = "qr"
)

// Credential is either a *PasswordCredential or a *QRCredential.
type Credential interface {
	Kind() CredentialKind
	Username() string
	isCredential()
}

type PasswordCredential struct {
	User     string
	Password string
}

func (c *PasswordCredential) Kind() CredentialKind { return CredentialPassword }
func (c *PasswordCredential) Username() string     { return c.User }
func (c *PasswordCredential) isCredential()        {}

// QRCredential holds the payload of a untis mobile login QR code, e.g.
// untis://setschool?url=korfu.webuntis.com&school=mysen&user=jdoe&key=SECRET
type QRCredential struct {
	Data   string
	User   string
	School string
	Server string
	Secret string
}

func (c *QRCredential) Kind() CredentialKind { return CredentialQR }
func (c *QRCredential) Username() string     { return c.User }
func (c *QRCredential) isCredential()        {}

// ParseQRCredential decodes the text of a untis login QR code.
func ParseQRCredential(data string) (*QRCredential, error) {
	data = strings.TrimSpace(data)
	u, err := url.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQR, err)
	}
	if u.Scheme != "untis" || u.Host != "setschool" {
		return nil, fmt.Errorf("%w: unexpected link %q", ErrInvalidQR, u.Scheme+"://"+u.Host)
	}

	q := u.Query()
	c := &QRCredential{
		Data:   data,
		User:   q.Get("user"),
		School: q.Get("school"),
		Server: q.Get("url"),
		Secret: q.Get("key"),
	}
	required := []struct{ name, value string }{
		{"url", c.Server},
		{"school", c.School},
		{"user", c.User},
		{"key", c.Secret},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidQR, r.name)
		}
	}
	return c, nil
}
