package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CORSOptions lists what cross-origin callers may use. AllowedMethods is
// normally derived from the route table.
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

var defaultCORSHeaders = []string{"Accept", "Content-Type", "X-Requested-With"}

type corsPolicy struct {
	origins []string
	methods []string
	headers []string
	maxAge  string
}

func newCORSPolicy(opts CORSOptions) *corsPolicy {
	p := &corsPolicy{
		methods: canonical(opts.AllowedMethods, strings.ToUpper),
		headers: canonical(opts.AllowedHeaders, http.CanonicalHeaderKey),
		maxAge:  strconv.Itoa(int(opts.MaxAge.Seconds())),
	}
	for _, o := range opts.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			p.origins = append(p.origins, strings.ToLower(o))
		}
	}
	if len(p.headers) == 0 {
		p.headers = defaultCORSHeaders
	}
	if opts.MaxAge <= 0 {
		p.maxAge = "300"
	}
	return p
}

func canonical(in []string, norm func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = norm(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func (p *corsPolicy) allowsOrigin(origin string) bool {
	return origin != "" && slices.Contains(p.origins, strings.ToLower(origin))
}

// allowsHeaders reports whether every header named in an
// Access-Control-Request-Headers value is allowed.
func (p *corsPolicy) allowsHeaders(requested string) bool {
	for _, h := range strings.Split(requested, ",") {
		h = http.CanonicalHeaderKey(strings.TrimSpace(h))
		if h != "" && !slices.Contains(p.headers, h) {
			return false
		}
	}
	return true
}

// CORS answers preflight requests for the methods and headers in opts and
// marks responses to allowed origins as shareable with credentials. A
// preflight for anything else gets 204 without allow headers, which the
// browser treats as a refusal.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	p := newCORSPolicy(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			origin := strings.TrimSpace(r.Header.Get("Origin"))

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				if p.allowsOrigin(origin) {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Access-Control-Request-Method")
			w.Header().Add("Vary", "Access-Control-Request-Headers")
			method := strings.ToUpper(r.Header.Get("Access-Control-Request-Method"))
			if p.allowsOrigin(origin) && slices.Contains(p.methods, method) &&
				p.allowsHeaders(r.Header.Get("Access-Control-Request-Headers")) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(p.methods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(p.headers, ", "))
				w.Header().Set("Access-Control-Max-Age", p.maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
