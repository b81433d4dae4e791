package untis

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

// untis element types
const (
	elementKlasse  = 1
	elementTeacher = 2
	elementSubject = 3
	elementRoom    = 4
	elementStudent = 5
)

var elementTypes = map[string]int{
	"CLASS":   elementKlasse,
	"TEACHER": elementTeacher,
	"SUBJECT": elementSubject,
	"ROOM":    elementRoom,
	"STUDENT": elementStudent,
}

var errNoSession = errors.New("untis returned no session")

// session is an authenticated untis login bound to one person.
type session struct {
	id         string
	school     string
	server     string
	personID   int
	personType int
}

func (s *session) cookies() string {
	return sessionCookies(s.id, s.school)
}

// login dispatches on the user's credential kind.
func (c *Client) login(ctx context.Context, user *entity.User) (*session, error) {
	switch cred := user.Credential.(type) {
	case *entity.PasswordCredential:
		return c.loginPassword(ctx, user.Server, user.SchoolName, cred)
	case *entity.QRCredential:
		return c.loginQR(ctx, cred)
	default:
		return nil, fmt.Errorf("unsupported credential %T", user.Credential)
	}
}

func (c *Client) loginPassword(ctx context.Context, server, school string, cred *entity.PasswordCredential) (*session, error) {
	params := map[string]string{
		"user":     cred.User,
		"password": cred.Password,
		"client":   c.clientName,
	}

	var result struct {
		SessionID  string `json:"sessionId"`
		PersonType int    `json:"personType"`
		PersonID   int    `json:"personId"`
	}
	if _, err := c.call(ctx, rpcEndpoint(server, school), "authenticate", params, "", &result); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if result.SessionID == "" {
		return nil, errNoSession
	}

	return &session{
		id:         result.SessionID,
		school:     school,
		server:     server,
		personID:   result.PersonID,
		personType: result.PersonType,
	}, nil
}

// loginQR authenticates with the one-time password derived from the QR secret,
// the way the untis mobile app does.
func (c *Client) loginQR(ctx context.Context, cred *entity.QRCredential) (*session, error) {
	now := c.now()
	otp, err := totp.GenerateCode(cred.Secret, now)
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	endpoint := "https://" + cred.Server + "/WebUntis/jsonrpc_intern.do?m=getUserData2017&v=i2.2&school=" + url.QueryEscape(cred.School)
	params := []any{map[string]any{
		"auth": map[string]any{
			"clientTime": now.UnixMilli(),
			"user":       cred.User,
			"otp":        otp,
		},
	}}

	var result struct {
		UserData struct {
			ElemType string `json:"elemType"`
			ElemID   int    `json:"elemId"`
		} `json:"userData"`
	}
	cookies, err := c.call(ctx, endpoint, "getUserData2017", params, "", &result)
	if err != nil {
		return nil, fmt.Errorf("getUserData2017: %w", err)
	}

	sess := &session{
		school:     cred.School,
		server:     cred.Server,
		personID:   result.UserData.ElemID,
		personType: elementTypes[result.UserData.ElemType],
	}
	for _, ck := range cookies {
		if ck.Name == "JSESSIONID" {
			sess.id = ck.Value
		}
	}
	if sess.id == "" {
		return nil, errNoSession
	}

	return sess, nil
}

func (c *Client) logout(ctx context.Context, sess *session) {
	_, err := c.call(ctx, rpcEndpoint(sess.server, sess.school), "logout", map[string]any{}, sess.cookies(), nil)
	if err != nil {
		c.log.Debug("untis logout failed", zap.String("server", sess.server), zap.Error(err))
	}
}
