package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/polyfall-game/polyfall/db/user"
	"github.com/polyfall-game/polyfall/server/log/logtest"
)

func TestNewServer(t *testing.T) {
	testLog := logtest.DiscardLogger
	var tokenizer mockTokenizer
	var userDao mockUserDao
	var lobby mockLobby
	var staticFS fstest.MapFS
	okParameters := Parameters{
		Logger:    testLog,
		Tokenizer: tokenizer,
		UserDao:   userDao,
		Lobby:     lobby,
		StaticFS:  staticFS,
	}
	newServerTests := []struct {
		Parameters
		Config
		wantOk bool
	}{
		{}, // no log
		{ // no tokenizer
			Parameters: Parameters{
				Logger: testLog,
			},
		},
		{ // no userDao
			Parameters: Parameters{
				Logger:    testLog,
				Tokenizer: tokenizer,
			},
		},
		{ // no lobby
			Parameters: Parameters{
				Logger:    testLog,
				Tokenizer: tokenizer,
				UserDao:   userDao,
			},
		},
		{ // no staticFS
			Parameters: Parameters{
				Logger:    testLog,
				Tokenizer: tokenizer,
				UserDao:   userDao,
				Lobby:     lobby,
			},
		},
		{ // no stopDur
			Parameters: okParameters,
		},
		{ // bad cacheSec
			Parameters: okParameters,
			Config: Config{
				StopDur:  1 * time.Hour,
				CacheSec: -1,
			},
		},
		{ // missing httpsPort
			Parameters: okParameters,
			Config: Config{
				StopDur: 1 * time.Hour,
			},
		},
		{ // missing version
			Parameters: okParameters,
			Config: Config{
				StopDur:   1 * time.Hour,
				HTTPSPort: 443,
			},
		},
		{ // bad version
			Parameters: okParameters,
			Config: Config{
				StopDur:   1 * time.Hour,
				HTTPSPort: 443,
				Version:   "v1.0",
			},
		},
		{
			Parameters: okParameters,
			Config: Config{
				HTTPPort:  80,
				HTTPSPort: 443,
				StopDur:   1 * time.Hour,
				CacheSec:  86400,
				Version:   "9d2ffad",
			},
			wantOk: true,
		},
	}
	for i, test := range newServerTests {
		s, err := test.Config.NewServer(test.Parameters)
		switch {
		case !test.wantOk:
			if err == nil {
				t.Errorf("Test %v: wanted error", i)
			}
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case s.HTTPServer.Addr != ":80":
			t.Errorf("Test %v: wanted http addr ':80', got %v", i, s.HTTPServer.Addr)
		case s.HTTPSServer.Addr != ":443":
			t.Errorf("Test %v: wanted https addr ':443', got %v", i, s.HTTPSServer.Addr)
		case s.HTTPServer.Handler == nil, s.HTTPSServer.Handler == nil:
			t.Errorf("Test %v: wanted handlers for both servers", i)
		}
	}
}

func TestHTTPHandler(t *testing.T) {
	httpHandlerTests := []struct {
		Challenge
		httpURI              string
		httpsRedirectHandler http.HandlerFunc
		wantCode             int
		wantBody             string
	}{
		{
			Challenge: Challenge{
				Token: "abc",
				Key:   "def",
			},
			httpURI:  acmeHeader + "abc",
			wantCode: 200,
			wantBody: "abc.def",
		},
		{
			Challenge: Challenge{
				Token: "fred",
			},
			httpURI:  acmeHeader + "barney",
			wantCode: 404,
			wantBody: "404 page not found\n", // ensures the actual token.key is not written to the body
		},
		{
			httpURI: "http://example.com/",
			httpsRedirectHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(418)
			},
			wantCode: 418,
		},
	}
	for i, test := range httpHandlerTests {
		cfg := Config{
			Challenge: test.Challenge,
		}
		r := httptest.NewRequest("", test.httpURI, nil)
		w := httptest.NewRecorder()
		h := cfg.httpHandler(test.httpsRedirectHandler)
		h.ServeHTTP(w, r)
		switch {
		case test.wantCode != w.Code:
			t.Errorf("Test %v: wanted status code %v, got %v", i, test.wantCode, w.Code)
		case len(test.wantBody) != 0 && test.wantBody != w.Body.String():
			t.Errorf("Test %v: wanted body %q, got %q", i, test.wantBody, w.Body.String())
		}
	}
}

func TestHTTPSHandler(t *testing.T) {
	username := "fred" // used to check token for POST
	monitor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("monitor called")
	})
	withTLS := func(r *http.Request) *http.Request {
		r.TLS = &tls.ConnectionState{}
		return r
	}
	withSecHeader := func(r *http.Request) *http.Request {
		r.Header.Add("Sec-Fetch-Mode", "same-origin")
		return r
	}
	withAuthorization := func(r *http.Request) *http.Request {
		r.Header.Add("Authorization", "Bearer GOOD")
		r.Form = url.Values{"username": {username}}
		return r
	}
	httpsHandlerTests := []struct {
		*http.Request
		Config
		Parameters
		httpHandler          http.HandlerFunc
		httpsRedirectHandler http.HandlerFunc
		wantCode             int
		wantBody             string
	}{
		{ // acme challenge with no TLS sent to HTTP handler
			Request: httptest.NewRequest("GET", acmeHeader, nil),
			httpHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(418)
			},
			wantCode: 418,
		},
		{
			Request: httptest.NewRequest("GET", "/want-redirect", nil),
			httpsRedirectHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(301)
			},
			Config: Config{
				NoTLSRedirect: true,
			},
			wantCode: 301,
		},
		{
			Request: withSecHeader(httptest.NewRequest("GET", "/unknown", nil)),
			Config: Config{
				NoTLSRedirect: true,
			},
			wantCode: 404,
		},
		{
			Request:  withTLS(httptest.NewRequest("GET", "/unknown", nil)),
			wantCode: 404,
		},
		{
			Request: withTLS(httptest.NewRequest("GET", "/version", nil)),
			Config: Config{
				Version: "9d2ffad",
			},
			wantCode: 200,
			wantBody: "9d2ffad",
		},
		{
			Request: withTLS(withAuthorization(httptest.NewRequest("POST", "/unknown", nil))),
			Parameters: Parameters{
				Tokenizer: mockTokenizer{
					ReadUsernameFunc: func(tokenString string) (string, error) {
						return username, nil
					},
				},
			},
			wantCode: 404,
		},
		{
			Request:  withTLS(httptest.NewRequest("DELETE", "/", nil)),
			wantCode: 405,
		},
	}
	for i, test := range httpsHandlerTests {
		w := httptest.NewRecorder()
		h := test.Config.httpsHandler(test.httpHandler, test.httpsRedirectHandler, test.Parameters, monitor)
		h.ServeHTTP(w, test.Request)
		switch {
		case test.wantCode != w.Code:
			t.Errorf("Test %v: status codes not equal: wanted: %v, got %v", i, test.wantCode, w.Code)
		case len(test.wantBody) != 0 && test.wantBody != w.Body.String():
			t.Errorf("Test %v: wanted body %q, got %q", i, test.wantBody, w.Body.String())
		}
	}
}

func TestCheckTokenUsername(t *testing.T) {
	want := "fred"
	checkTokenUsernameTests := []struct {
		authorizationHeader  string
		readTokenUsernameErr error
		formUsername         string
		wantOk               bool
	}{
		{},
		{
			authorizationHeader: "bad bearer token",
		},
		{
			authorizationHeader:  "Bearer GOOD",
			readTokenUsernameErr: fmt.Errorf("tokenizer error"),
		},
		{
			authorizationHeader: "Bearer GOOD",
			formUsername:        "alice",
		},
		{
			authorizationHeader: "Bearer GOOD",
			formUsername:        want,
			wantOk:              true,
		},
	}
	for i, test := range checkTokenUsernameTests {
		tokenizer := mockTokenizer{
			ReadUsernameFunc: func(tokenString string) (string, error) {
				if test.readTokenUsernameErr != nil {
					return "", test.readTokenUsernameErr
				}
				return want, nil
			},
		}
		r := http.Request{
			Header: http.Header{
				"Authorization": {test.authorizationHeader},
			},
			Form: url.Values{
				"username": {test.formUsername},
			},
		}
		err := checkTokenUsername(&r, tokenizer)
		switch {
		case err != nil:
			if test.wantOk {
				t.Errorf("Test %v: unwanted error: %v", i, err)
			}
		case !test.wantOk:
			t.Errorf("Test %v: wanted error", i)
		}
	}
}

func TestAcmeChallengeHandler(t *testing.T) {
	c := Challenge{
		Token: "abc",
		Key:   "s3cr3t",
	}
	r := httptest.NewRequest("", acmeHeader+"abc", nil)
	w := httptest.NewRecorder()
	h := acmeChallengeHandler(c)
	h.ServeHTTP(w, r)
	want := "abc.s3cr3t"
	got := w.Body.String()
	if want != got {
		t.Errorf("different body:\nwanted: %v\ngot:    %v", want, got)
	}
}

func TestVersionHandler(t *testing.T) {
	want := "9d2ffad"
	r := httptest.NewRequest("", "/version", nil)
	w := httptest.NewRecorder()
	h := versionHandler(want)
	h.ServeHTTP(w, r)
	switch {
	case want != w.Body.String():
		t.Errorf("wanted body %q, got %q", want, w.Body.String())
	case w.Header().Get(HeaderContentType) != "text/plain; charset=utf-8":
		t.Errorf("wanted plain text content type, got %v", w.Header().Get(HeaderContentType))
	}
}

func TestFileHandler(t *testing.T) {
	cacheMaxAge := "max-age=???"
	fileHandlerTests := []struct {
		path          string
		requestHeader http.Header
		wantHeader    http.Header
	}{
		{
			path: "/robots.txt",
			wantHeader: http.Header{
				"Cache-Control":             {cacheMaxAge},
				"Strict-Transport-Security": {cacheMaxAge},
				"Content-Type":              {"text/plain; charset=utf-8"},
			},
		},
		{
			path: "/robots.txt",
			requestHeader: http.Header{
				"Accept-Encoding": {"gzip"},
			},
			wantHeader: http.Header{
				"Cache-Control":             {cacheMaxAge},
				"Strict-Transport-Security": {cacheMaxAge},
				"Content-Encoding":          {"gzip"},
				"Content-Type":              {"text/plain; charset=utf-8"},
			},
		},
	}
	for i, test := range fileHandlerTests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", test.path, nil)
		r.Header = test.requestHeader
		handlerCalled := false
		h := fileHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		}), cacheMaxAge)
		h.ServeHTTP(w, r)
		switch {
		case !handlerCalled:
			t.Errorf("Test %v: wanted handler to be called", i)
		default:
			for header, want := range test.wantHeader {
				if got := w.Header().Get(header); want[0] != got {
					t.Errorf("Test %v: wanted %v header to be %v, got %v", i, header, want[0], got)
				}
			}
		}
	}
}

func TestHTTPSRedirectHandler(t *testing.T) {
	httpsRedirectHandlerTests := []struct {
		httpURI   string
		httpsPort int
		want      string
	}{
		{
			httpURI:   "http://example.com",
			httpsPort: 443,
			want:      "https://example.com",
		},
		{
			httpURI:   "http://example.com:80/abc",
			httpsPort: 443,
			want:      "https://example.com/abc",
		},
		{
			httpURI:   "http://example.com:8001/abc/d",
			httpsPort: 8000,
			want:      "https://example.com:8000/abc/d",
		},
	}
	for i, test := range httpsRedirectHandlerTests {
		r := httptest.NewRequest("", test.httpURI, nil)
		w := httptest.NewRecorder()
		h := httpsRedirectHandler(test.httpsPort)
		h.ServeHTTP(w, r)
		got := w.Header().Get("Location")
		switch {
		case w.Code != 301:
			t.Errorf("Test %v: wanted status code 301, got %v", i, w.Code)
		case test.want != got:
			t.Errorf("Test %v:\nwanted: %v\ngot:    %v", i, test.want, got)
		}
	}
}

func TestValidHTTPAddr(t *testing.T) {
	validHTTPAddrTests := []struct {
		httpPort int
		want     bool
	}{
		{},
		{
			httpPort: -1,
		},
		{
			httpPort: 80,
			want:     true,
		},
	}
	for i, test := range validHTTPAddrTests {
		cfg := Config{
			HTTPPort: test.httpPort,
		}
		got := cfg.validHTTPAddr()
		if test.want != got {
			t.Errorf("Test %v: wanted %v when http port is %v", i, test.want, test.httpPort)
		}
	}
}

func TestHTTPError(t *testing.T) {
	w := httptest.NewRecorder()
	want := 400
	httpError(w, want)
	got := w.Code
	switch {
	case want != got:
		t.Errorf("wanted status code %v, got %v", want, got)
	case w.Body.Len() <= 1: // ends in \n character
		t.Errorf("wanted status code info for error (%v) in body", want)
	}
}

func TestWriteInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("mock error")
	log := logtest.NewLogger()
	want := 500
	writeInternalError(err, log, w)
	got := w.Code
	switch {
	case want != got:
		t.Errorf("wanted status code %v, got %v", want, got)
	case !strings.Contains(w.Body.String(), err.Error()):
		t.Errorf("wanted message in body (%v), but got %v", err.Error(), w.Body.String())
	case !strings.Contains(log.String(), err.Error()):
		t.Errorf("wanted message in log (%v), but got %v", err.Error(), log.String())
	}
}

func TestHasSecHeader(t *testing.T) {
	hasSecHeaderTests := map[string]bool{
		"Accept":          false,
		"DNT":             false,
		"":                false,
		"inSec-t":         false,
		"Sec-Fetch-Mode:": true,
	}
	for header, want := range hasSecHeaderTests {
		r := http.Request{
			Header: http.Header{
				header: {},
			},
		}
		got := hasSecHeader(&r)
		if want != got {
			t.Errorf("wanted hasSecHeader = %v when header = %v", want, header)
		}
	}
}

func TestAddMimeType(t *testing.T) {
	addMimeTypeTests := map[string]string{
		"favicon.ico": "image/vnd.microsoft.icon",
		"robots.txt":  "text/plain; charset=utf-8",
		"version":     "text/plain; charset=utf-8",
		"any.html":    "text/html; charset=utf-8",
	}
	for fileName, want := range addMimeTypeTests {
		w := httptest.NewRecorder()
		addMimeType(fileName, w)
		got := w.Header().Get("Content-Type")
		if want != got {
			t.Errorf("when filename = %v, wanted mimeType %v, got %v", fileName, want, got)
		}
	}
}

func TestWrappedResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	var sb strings.Builder
	w2 := wrappedResponseWriter{
		Writer:         &sb,
		ResponseWriter: w,
	}
	want := "sent to sb"
	w2.Write([]byte(want))
	got := sb.String()
	if want != got {
		t.Errorf("not equal:\nwanted: %v\ngot:    %v", want, got)
	}
}

func TestGetHandler(t *testing.T) {
	monitor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// NOOP
	})
	checkCode := func(t *testing.T, path string, p Parameters, cfg Config, wantCode int) {
		t.Helper()
		r := httptest.NewRequest("", path, nil)
		w := httptest.NewRecorder()
		h := p.getHandler(cfg, monitor)
		h.ServeHTTP(w, r)
		if gotCode := w.Code; wantCode != gotCode {
			t.Errorf("codes not equal for GET to %v: wanted: %v, got: %v", path, wantCode, gotCode)
		}
	}
	t.Run("invalidGetPaths", func(t *testing.T) {
		invalidPaths := []string{"/invalid/get/path", "/ping", "/"}
		for _, path := range invalidPaths {
			var cfg Config
			var p Parameters
			checkCode(t, path, p, cfg, 404)
		}
	})
	t.Run("staticFiles", func(t *testing.T) {
		staticFiles := []string{
			"/robots.txt",
			"/favicon.ico",
		}
		for _, path := range staticFiles {
			fileName := path[1:]
			var cfg Config
			p := Parameters{
				StaticFS: fstest.MapFS{
					fileName: &fstest.MapFile{Data: []byte{}},
				},
			}
			checkCode(t, path, p, cfg, 200)
		}
	})
	t.Run("version", func(t *testing.T) {
		cfg := Config{
			Version: "9d2ffad",
		}
		var p Parameters
		checkCode(t, "/version", p, cfg, 200)
	})
	t.Run("lobby", func(t *testing.T) {
		var cfg Config
		p := Parameters{
			Logger: logtest.DiscardLogger,
			Tokenizer: mockTokenizer{
				ReadUsernameFunc: func(tokenString string) (string, error) {
					return "", nil
				},
			},
			Lobby: mockLobby{
				addUserFunc: func(username string, w http.ResponseWriter, r *http.Request) error {
					return nil
				},
			},
		}
		checkCode(t, "/lobby", p, cfg, 200)
	})
	t.Run("monitor", func(t *testing.T) {
		var cfg Config
		var p Parameters
		// empty monitor used in checkCode
		checkCode(t, "/monitor", p, cfg, 200)
	})
}

func TestPostHandler(t *testing.T) {
	type postHandlerTest struct {
		path          string
		authorization string
		wantCode      int
	}
	var postHandlerTests []postHandlerTest
	for _, path := range []string{"/", "/invalid/post/path"} {
		postHandlerTests = append(postHandlerTests,
			postHandlerTest{path: path, wantCode: 403},
			postHandlerTest{path: path, wantCode: 404, authorization: "Bearer GOOD"},
		)
	}
	for _, path := range []string{"/user_create", "/user_login"} {
		postHandlerTests = append(postHandlerTests,
			postHandlerTest{path: path, wantCode: 200},
		)
	}
	for _, path := range []string{"/user_update_password", "/user_delete", "/ping"} {
		postHandlerTests = append(postHandlerTests,
			postHandlerTest{path: path, wantCode: 403},
			postHandlerTest{path: path, wantCode: 200, authorization: "Bearer GOOD"},
		)
	}
	u := "fred"
	formParams := url.Values{
		"username":         {u},
		"password":         {"s3cr3t_old"},
		"password_confirm": {"s3cr3t_new"},
	}
	tokenizer := mockTokenizer{
		CreateFunc: func(username string, points int) (string, error) {
			return "", nil
		},
		ReadUsernameFunc: func(tokenString string) (string, error) {
			return u, nil
		},
	}
	lobby := mockLobby{
		removeUserFunc: func(username string) {
			// NOOP
		},
	}
	userDao := mockUserDao{
		createFunc: func(ctx context.Context, u user.User) error {
			return nil
		},
		readFunc: func(ctx context.Context, u user.User) (*user.User, error) {
			return &user.User{}, nil
		},
		updatePasswordFunc: func(ctx context.Context, u user.User, newPassword string) error {
			return nil
		},
		deleteFunc: func(ctx context.Context, u user.User) error {
			return nil
		},
	}
	for i, test := range postHandlerTests {
		r := httptest.NewRequest("", test.path, nil)
		r.Form = formParams
		r.Header.Add("Authorization", test.authorization)
		w := httptest.NewRecorder()
		p := Parameters{
			Logger:    logtest.DiscardLogger,
			Tokenizer: tokenizer,
			Lobby:     lobby,
			UserDao:   userDao,
		}
		h := p.postHandler()
		h.ServeHTTP(w, r)
		gotCode := w.Code
		if test.wantCode != gotCode {
			t.Errorf("Test %v:\nPOST to %v, authorization='%v': status codes not equal: wanted: %v, got: %v", i, test.path, test.authorization, test.wantCode, gotCode)
		}
	}
}
