package saw

import (
	"context"
	"encoding/xml"
	"errors"
	"strings"
)

// SessionService is the SAWSessionService binding.
type SessionService struct {
	caller Caller
}

// NewSessionService binds the session operations to caller.
func NewSessionService(caller Caller) *SessionService {
	return &SessionService{caller: caller}
}

type logonRequest struct {
	XMLName  xml.Name `xml:"v6:logon"`
	Name     string   `xml:"v6:name"`
	Password string   `xml:"v6:password"`
}

type logonResponse struct {
	XMLName   xml.Name `xml:"logonResult"`
	SessionID string   `xml:"sessionID"`
}

type logoffRequest struct {
	XMLName   xml.Name `xml:"v6:logoff"`
	SessionID string   `xml:"v6:sessionID"`
}

// Logon authenticates and returns the session ID.
func (s *SessionService) Logon(ctx context.Context, username, password string) (string, error) {
	var resp logonResponse
	err := s.caller.Call(ctx, OpLogon, &logonRequest{Name: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}

	sessionID := strings.TrimSpace(resp.SessionID)
	if sessionID == "" {
		return "", errors.New("logon: response carried no session ID")
	}
	return sessionID, nil
}

// Logoff ends the session.
func (s *SessionService) Logoff(ctx context.Context, sessionID string) error {
	return s.caller.Call(ctx, OpLogoff, &logoffRequest{SessionID: sessionID}, nil)
}
