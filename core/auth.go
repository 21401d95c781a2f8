package core

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var authenticators []Authenticator

type Authenticator interface {
	authorize() error
	setAuthHeader(headers *http.Header)
	equal(other Authenticator) bool
	setInitialized(bool)
}

// createAuthenticator creates a new Authenticator instance based on the provided VergeConfig.
// Each session gets its own authenticator instance to avoid global state issues.
func createAuthenticator(config *VergeConfig) (Authenticator, error) {
	var authenticator Authenticator

	// Priority: ApiToken > BasicAuth > session token
	if config.ApiToken != "" {
		authenticator = &StaticTokenAuthenticator{
			Host:      config.Host,
			Port:      config.Port,
			SslVerify: config.SslVerify,
			Token:     config.ApiToken,
		}
	} else if config.UseBasicAuth && config.Username != "" && config.Password != "" {
		authenticator = &BasicAuthAuthenticator{
			Host:      config.Host,
			Port:      config.Port,
			SslVerify: config.SslVerify,
			Username:  config.Username,
			Password:  config.Password,
		}
	} else if config.Username != "" && config.Password != "" {
		authenticator = &SessionTokenAuthenticator{
			Host:      config.Host,
			Port:      config.Port,
			SslVerify: config.SslVerify,
			Username:  config.Username,
			Password:  config.Password,
			Token:     &sessionToken{},
		}
	}
	if authenticator != nil {
		for _, existingAuthenticator := range authenticators {
			if existingAuthenticator.equal(authenticator) {
				return existingAuthenticator, nil
			}
		}
		if err := authenticator.authorize(); err != nil {
			return nil, err
		}
		authenticators = append(authenticators, authenticator)
		return authenticator, nil
	}

	panic("createAuthenticator: neither username/password nor apiToken are provided")
}

// sessionToken is the row returned by POST /sys/tokens.
// Id is the opaque token value sent back in the x-yottabyte-token header.
type sessionToken struct {
	Key  int64  `json:"$key"`
	Id   string `json:"id"`
	User string `json:"user"`
}

// SessionTokenAuthenticator logs in against /sys/tokens with basic credentials
// and authenticates subsequent requests with the issued session token.
// When the token expires (401/403 on a request), the session layer calls
// authorize() again to obtain a fresh one.
type SessionTokenAuthenticator struct {
	Host        string
	Port        uint64
	SslVerify   bool
	Username    string
	Password    string
	Token       *sessionToken
	initialized bool
}

func parseToken(rsp *http.Response) (*sessionToken, error) {
	var token sessionToken
	out, e := io.ReadAll(rsp.Body)
	if e != nil {
		return nil, e
	}
	e = json.Unmarshal(out, &token)
	if e != nil {
		return nil, e
	}
	return &token, nil
}

func (auth *SessionTokenAuthenticator) acquireToken(client *http.Client) (*http.Response, error) {
	server := auth.Host + ":" + strconv.FormatUint(auth.Port, 10)
	path := url.URL{
		Scheme: "https",
		Host:   server,
		Path:   "api/sys/tokens",
	}
	body, err := json.Marshal(map[string]string{"login": auth.Username, "password": auth.Password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, path.String(), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderContentType, ContentTypeJSON)
	// The token create endpoint itself requires basic credentials
	req.SetBasicAuth(auth.Username, auth.Password)

	return client.Do(req)
}

func (auth *SessionTokenAuthenticator) authorize() error {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !auth.SslVerify},
	}
	client := &http.Client{
		Transport: tr,
		Timeout:   20 * time.Second,
	}
	resp, err := auth.acquireToken(client)
	auth.setInitialized(true)
	if err != nil {
		return err
	}
	if resp != nil {
		defer resp.Body.Close()
	}
	if err = validateResponse(resp, auth.Host, auth.Port); err != nil {
		return err
	}
	token, err := parseToken(resp)
	if err != nil {
		return err
	}
	auth.Token = token
	return nil
}

func (auth *SessionTokenAuthenticator) setAuthHeader(headers *http.Header) {
	headers.Add(HeaderToken, auth.Token.Id)
}

func (auth *SessionTokenAuthenticator) equal(other Authenticator) bool {
	otherAuth, ok := other.(*SessionTokenAuthenticator)
	if !ok {
		return false
	}
	return auth.Username == otherAuth.Username &&
		auth.Password == otherAuth.Password &&
		auth.Host == otherAuth.Host &&
		auth.Port == otherAuth.Port &&
		auth.SslVerify == otherAuth.SslVerify
}

func (auth *SessionTokenAuthenticator) setInitialized(state bool) {
	auth.initialized = state
}

// StaticTokenAuthenticator authenticates with a pre-issued session token.
type StaticTokenAuthenticator struct {
	Host      string
	Port      uint64
	SslVerify bool
	Token     string
}

func (auth *StaticTokenAuthenticator) authorize() error {
	// No-op: the token is supplied by the caller and cannot be refreshed here.
	return nil
}

func (auth *StaticTokenAuthenticator) setAuthHeader(headers *http.Header) {
	headers.Add(HeaderToken, auth.Token)
}

func (auth *StaticTokenAuthenticator) equal(other Authenticator) bool {
	otherAuth, ok := other.(*StaticTokenAuthenticator)
	if !ok {
		return false
	}
	return auth.Token == otherAuth.Token &&
		auth.Host == otherAuth.Host &&
		auth.Port == otherAuth.Port &&
		auth.SslVerify == otherAuth.SslVerify
}

func (auth *StaticTokenAuthenticator) setInitialized(_ bool) {
	// No-op
}

// BasicAuthAuthenticator sends HTTP Basic credentials on every request.
type BasicAuthAuthenticator struct {
	Host        string
	Port        uint64
	SslVerify   bool
	Username    string
	Password    string
	encodedAuth string // Cached Base64-encoded credentials
}

func (auth *BasicAuthAuthenticator) authorize() error {
	// Pre-compute and cache the Base64-encoded Basic Auth credentials
	authStr := auth.Username + ":" + auth.Password
	auth.encodedAuth = base64.StdEncoding.EncodeToString([]byte(authStr))
	return nil
}

func (auth *BasicAuthAuthenticator) setAuthHeader(headers *http.Header) {
	headers.Add(HeaderAuthorization, AuthTypeBasic+" "+auth.encodedAuth)
}

func (auth *BasicAuthAuthenticator) equal(other Authenticator) bool {
	otherAuth, ok := other.(*BasicAuthAuthenticator)
	if !ok {
		return false
	}
	return auth.Username == otherAuth.Username &&
		auth.Password == otherAuth.Password &&
		auth.Host == otherAuth.Host &&
		auth.Port == otherAuth.Port &&
		auth.SslVerify == otherAuth.SslVerify
}

func (auth *BasicAuthAuthenticator) setInitialized(_ bool) {
	// No-op for Basic Auth
}
