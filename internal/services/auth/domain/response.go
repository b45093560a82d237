package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	perr "walletsync/internal/platform/errors"
)

// AuthRequiredMarker is the error body marker of a login awaiting email confirmation
const AuthRequiredMarker = "authorization_required"

// PayloadResponse is the raw answer of the wallet payload endpoint
// ErrorBody is set when the server answered with a non 2xx status
type PayloadResponse struct {
	Status    int
	Body      string
	ErrorBody string
}

// ResponseKind tags a Response
type ResponseKind uint8

const (
	// KindNoChallenge carries a payload ready to decrypt
	KindNoChallenge ResponseKind = iota + 1
	// KindChallengeRequired carries an object missing its payload and a second factor type
	KindChallengeRequired
	// KindChallengeResolved carries an object completed with the second factor fragment
	KindChallengeResolved
	// KindEmailPending means the login waits for the email link
	KindEmailPending
)

func (k ResponseKind) String() string {
	switch k {
	case KindNoChallenge:
		return "no_challenge"
	case KindChallengeRequired:
		return "challenge_required"
	case KindChallengeResolved:
		return "challenge_resolved"
	case KindEmailPending:
		return "email_pending"
	default:
		return "unknown"
	}
}

// Response is the tagged payload variant the handshake branches on
type Response struct {
	Kind     ResponseKind
	AuthType AuthType
	Body     string
}

// NoChallenge wraps a payload ready to decrypt
func NoChallenge(body string) Response { return Response{Kind: KindNoChallenge, Body: body} }

// ChallengeRequired wraps an object awaiting a second factor
func ChallengeRequired(t AuthType, raw string) Response {
	return Response{Kind: KindChallengeRequired, AuthType: t, Body: raw}
}

// ChallengeResolved wraps an object whose payload was supplied by the second factor
func ChallengeResolved(body string) Response {
	return Response{Kind: KindChallengeResolved, Body: body}
}

// EmailPending wraps the error body of a login awaiting email confirmation
func EmailPending(raw string) Response { return Response{Kind: KindEmailPending, Body: raw} }

// Decryptable reports whether Body can go to the decryptor
func (r Response) Decryptable() bool {
	return r.Kind == KindNoChallenge || r.Kind == KindChallengeResolved
}

// ParseResponse classifies a payload endpoint answer
func ParseResponse(pr PayloadResponse) (Response, error) {
	if strings.Contains(pr.ErrorBody, AuthRequiredMarker) {
		return EmailPending(pr.ErrorBody), nil
	}
	if pr.ErrorBody != "" && strings.TrimSpace(pr.Body) == "" {
		return Response{}, perr.Protocolf("payload endpoint failed with status %d", pr.Status)
	}
	return ParseBody(pr.Body)
}

// ParseBody classifies a successful payload body
// an object with auth_type and no payload needs a second factor, a type other than
// google authenticator or sms is rejected
func ParseBody(body string) (Response, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return Response{}, perr.Wrapf(err, perr.ErrorCodeProtocol, "payload body is not a json object")
	}
	rawType, hasType := obj["auth_type"]
	_, hasPayload := obj["payload"]
	if !hasType || hasPayload {
		return NoChallenge(body), nil
	}
	var t AuthType
	if err := json.Unmarshal(rawType, &t); err != nil {
		return Response{}, perr.Wrapf(err, perr.ErrorCodeProtocol, "auth_type is not an integer")
	}
	if !t.CodeBased() {
		return Response{}, perr.Protocolf("unsupported auth type %d without payload", t)
	}
	return ChallengeRequired(t, body), nil
}

// Splice sets fragment as the payload field of the challenge object
func Splice(challenge Response, fragment string) (Response, error) {
	obj := map[string]json.RawMessage{}
	if s := strings.TrimSpace(challenge.Body); s != "" {
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return Response{}, perr.Wrapf(err, perr.ErrorCodeProtocol, "challenge body is not a json object")
		}
	}
	frag, err := json.Marshal(fragment)
	if err != nil {
		return Response{}, perr.Wrapf(err, perr.ErrorCodeProtocol, "encode payload fragment")
	}
	obj["payload"] = frag
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return Response{}, perr.Wrapf(err, perr.ErrorCodeProtocol, "encode spliced body")
	}
	return ChallengeResolved(strings.TrimSpace(buf.String())), nil
}
