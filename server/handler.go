package server

import (
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/polyfall-game/polyfall/server/log"
)

type (
	// Config contains fields which describe the server
	Config struct {
		// HTTPPort is the TCP port for server http requests.  All traffic is redirected to the https port.
		HTTPPort int
		// HTTPSPort is the TCP port for server https requests.
		HTTPSPort int
		// StopDur is the maximum time the server takes to shut down gracefully.
		StopDur time.Duration
		// CacheSec is the number of seconds static files are cached.
		CacheSec int
		// Version is reported to clients so they can bust caches from older server versions.
		Version string
		// TLSCertPEM is the public HTTPS TLS certificate file data.
		TLSCertPEM string
		// TLSKeyPEM is the private HTTPS TLS key file data.
		TLSKeyPEM string
		// Challenge is used to create an ACME certificate.
		Challenge
		// NoTLSRedirect disables redirection to https from http when true.
		NoTLSRedirect bool
	}

	// Parameters contains the interfaces needed to create a new server
	Parameters struct {
		log.Logger
		Tokenizer
		UserDao
		Lobby
		StaticFS fs.FS
	}

	// Challenge token and key used to get a TLS certificate using ACME HTTP-01.
	Challenge struct {
		Token string
		Key   string
	}
)

const (
	// HeaderContentType is used to set the document type header on http responses.
	HeaderContentType = "Content-Type"
	// HeaderCacheControl is used to tell browsers how long to cache http responses.
	HeaderCacheControl = "Cache-Control"
	// HeaderStrictTransportSecurity is used to tell browsers the site should only be accessed using HTTPS.
	HeaderStrictTransportSecurity = "Strict-Transport-Security"
	// HeaderAcceptEncoding is specified by clients to tell the server what types of document encoding they can handle.
	HeaderAcceptEncoding = "Accept-Encoding"
	// HeaderContentEncoding is used to tell clients how the document is encoded.
	HeaderContentEncoding = "Content-Encoding"
	// acmeHeader is the path of the endpoint to serve the challenge at.
	acmeHeader = "/.well-known/acme-challenge/"
)

// NewServer creates a Server from the Config
func (cfg Config) NewServer(p Parameters) (*Server, error) {
	if err := cfg.validate(p); err != nil {
		return nil, fmt.Errorf("creating server: validation: %w", err)
	}
	monitor := runtimeMonitor{
		hasTLS: cfg.validHTTPAddr(),
	}
	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpsAddr := fmt.Sprintf(":%d", cfg.HTTPSPort)
	httpsRedirectHandler := httpsRedirectHandler(cfg.HTTPSPort)
	httpHandler := cfg.httpHandler(httpsRedirectHandler)
	httpsHandler := cfg.httpsHandler(httpHandler, httpsRedirectHandler, p, monitor)
	s := Server{
		log:   p.Logger,
		lobby: p.Lobby,
		HTTPServer: &http.Server{
			Addr:         httpAddr,
			Handler:      httpHandler,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		HTTPSServer: &http.Server{
			Addr:         httpsAddr,
			Handler:      httpsHandler,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Config: cfg,
	}
	return &s, nil
}

// validate ensures the configuration and parameters have no errors.
func (cfg Config) validate(p Parameters) error {
	if err := p.validate(); err != nil {
		return err
	}
	switch {
	case cfg.StopDur <= 0:
		return fmt.Errorf("stop timeout duration required")
	case cfg.CacheSec < 0:
		return fmt.Errorf("nonnegative cache seconds required")
	case cfg.HTTPSPort <= 0:
		return fmt.Errorf("positive https port required")
	case len(cfg.Version) == 0:
		return fmt.Errorf("version required")
	}
	for i, r := range cfg.Version {
		if !unicode.In(r, unicode.Letter, unicode.Digit) {
			return fmt.Errorf("only letters and digits are allowed in version: invalid rune at index %v of '%v': '%v'", i, cfg.Version, string(r))
		}
	}
	return nil
}

// validHTTPAddr determines if the HTTP address is valid.
// The HTTP address is valid if and only if the HTTP port is positive.
// If the HTTP address is valid, the HTTP server should be started to redirect to HTTPS and handle certificate creation.
func (cfg Config) validHTTPAddr() bool {
	return cfg.HTTPPort > 0
}

// validate ensures that all of the parameters are present.
func (p Parameters) validate() error {
	switch {
	case p.Logger == nil:
		return fmt.Errorf("log required")
	case p.Tokenizer == nil:
		return fmt.Errorf("tokenizer required")
	case p.UserDao == nil:
		return fmt.Errorf("user dao required")
	case p.Lobby == nil:
		return fmt.Errorf("lobby required")
	case p.StaticFS == nil:
		return fmt.Errorf("static file system required")
	}
	return nil
}

// httpHandler creates a handler for HTTP endpoints.
func (cfg Config) httpHandler(httpsRedirectHandler http.Handler) http.Handler {
	httpMux := http.NewServeMux()
	httpMux.Handle(acmeHeader, http.HandlerFunc(acmeChallengeHandler(cfg.Challenge)))
	httpMux.Handle("/", httpsRedirectHandler)
	return httpMux
}

// httpsHandler creates a handler for HTTPS endpoints.
// Non-TLS requests are redirected to HTTPS.  GET and POST requests are handled by more specific handlers.
func (cfg Config) httpsHandler(httpHandler, httpsRedirectHandler http.Handler, p Parameters, monitor http.Handler) http.HandlerFunc {
	getHandler := p.getHandler(cfg, monitor)
	postHandler := p.postHandler()
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.TLS == nil && !cfg.NoTLSRedirect:
			httpHandler.ServeHTTP(w, r)
		case r.TLS == nil && cfg.NoTLSRedirect && !hasSecHeader(r):
			httpsRedirectHandler.ServeHTTP(w, r)
		case r.Method == "GET":
			getHandler.ServeHTTP(w, r)
		case r.Method == "POST":
			postHandler.ServeHTTP(w, r)
		default:
			httpError(w, http.StatusMethodNotAllowed)
		}
	}
}

// getHandler forwards calls to various endpoints.
func (p Parameters) getHandler(cfg Config, monitor http.Handler) http.Handler {
	cacheMaxAge := fmt.Sprintf("max-age=%d", cfg.CacheSec)
	staticHandler := fileHandler(http.FileServer(http.FS(p.StaticFS)), cacheMaxAge)
	staticPatterns := []string{"/robots.txt", "/favicon.ico"}

	getMux := http.NewServeMux()
	for _, pattern := range staticPatterns {
		getMux.Handle(pattern, staticHandler)
	}
	getMux.Handle("/version", http.HandlerFunc(versionHandler(cfg.Version)))
	getMux.Handle("/lobby", http.HandlerFunc(userLobbyConnectHandler(p.Tokenizer, p.Lobby, p.Logger)))
	getMux.Handle("/monitor", monitor)
	return getMux
}

// postHandler checks authentication and calls handlers for POST endpoints.
func (p Parameters) postHandler() http.Handler {
	postMux := http.NewServeMux()
	postMux.Handle("/user_create", http.HandlerFunc(userCreateHandler(p.UserDao, p.Logger)))
	postMux.Handle("/user_login", http.HandlerFunc(userLoginHandler(p.UserDao, p.Tokenizer, p.Logger)))
	postMux.Handle("/user_update_password", http.HandlerFunc(userUpdatePasswordHandler(p.UserDao, p.Lobby, p.Logger)))
	postMux.Handle("/user_delete", http.HandlerFunc(userDeleteHandler(p.UserDao, p.Lobby, p.Logger)))
	postMux.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// NOOP
	}))
	return authHandler(postMux, p.Tokenizer, p.Logger)
}

// authHandler checks the token username of the request before running the child handler.
func authHandler(h http.Handler, tokenizer Tokenizer, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user_create", "/user_login":
			// [unauthenticated]
		default:
			if err := checkTokenUsername(r, tokenizer); err != nil {
				log.Printf(err.Error())
				httpError(w, http.StatusForbidden)
				return
			}
		}
		h.ServeHTTP(w, r)
	}
}

// checkTokenUsername ensures the username in the authorization header matches that in the username form value.
func checkTokenUsername(r *http.Request, tokenizer Tokenizer) error {
	authorization := r.Header.Get("Authorization")
	if len(authorization) < 7 || authorization[:7] != "Bearer " {
		return fmt.Errorf("invalid authorization header: %v", authorization)
	}
	tokenString := authorization[7:]
	tokenUsername, err := tokenizer.ReadUsername(tokenString)
	if err != nil {
		return fmt.Errorf("reading username from token: %w", err)
	}
	formUsername := r.FormValue("username")
	if tokenUsername != formUsername {
		return fmt.Errorf("username not same as token username")
	}
	return nil
}

// acmeChallengeHandler writes the challenge to the response.
// Writes the concatenation of the token, a period, and the key.
func acmeChallengeHandler(challenge Challenge) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path[len(acmeHeader):] != challenge.Token {
			http.NotFound(w, r)
			return
		}
		data := challenge.Token + "." + challenge.Key
		w.Write([]byte(data))
	}
}

// versionHandler writes the server version as plain text.
func versionHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addMimeType("version.txt", w)
		w.Write([]byte(version))
	}
}

// fileHandler wraps the handling of the file, adding cache-control headers and gzip compression, if possible.
func fileHandler(h http.Handler, cacheMaxAge string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get(HeaderAcceptEncoding), "gzip") {
			w2 := gzip.NewWriter(w)
			defer w2.Close()
			w = wrappedResponseWriter{
				Writer:         w2,
				ResponseWriter: w,
			}
			w.Header().Add(HeaderContentEncoding, "gzip")
		}
		w.Header().Set(HeaderCacheControl, cacheMaxAge)
		w.Header().Set(HeaderStrictTransportSecurity, cacheMaxAge)
		addMimeType(r.URL.Path, w)
		h.ServeHTTP(w, r)
	}
}

// httpsRedirectHandler redirects the request to https.
func httpsRedirectHandler(httpsPort int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		// derived from net.SplitHostPort, but does not throw error :
		lastColonIndex := strings.LastIndex(host, ":")
		if lastColonIndex >= 0 {
			host = host[:lastColonIndex]
		}
		if httpsPort != 443 {
			host += fmt.Sprintf(":%d", httpsPort)
		}
		httpsURI := "https://" + host + r.URL.Path
		http.Redirect(w, r, httpsURI, http.StatusMovedPermanently)
	}
}

// writeInternalError logs and writes the error as an internal server error (500).
func writeInternalError(err error, log log.Logger, w http.ResponseWriter) {
	log.Printf("server error: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// httpError writes the error status code.
func httpError(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}

// hasSecHeader returns true if the request has any header starting with "Sec-".
func hasSecHeader(r *http.Request) bool {
	for header := range r.Header {
		if strings.HasPrefix(header, "Sec-") {
			return true
		}
	}
	return false
}

// addMimeType adds the applicable mime type to the response.  Files without extensions are assumed to be text
func addMimeType(fileName string, w http.ResponseWriter) {
	if !strings.Contains(fileName, ".") {
		fileName = ".txt"
	}
	extension := filepath.Ext(fileName)
	mimeType := mime.TypeByExtension(extension)
	w.Header().Add(HeaderContentType, mimeType)
}

// wrappedResponseWriter wraps response writing with another writer.
type wrappedResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

// Write delegates the write to the wrapped writer.
func (wrw wrappedResponseWriter) Write(p []byte) (n int, err error) {
	return wrw.Writer.Write(p)
}
