package fletch

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidURL is returned by ParseURL when the input cannot be parsed
// under the restricted grammar this package accepts.
var ErrInvalidURL = errors.New("fletch: invalid url")

// URL is the parsed form of a request target or absolute URL. It
// intentionally does not reuse net/url.URL: the grammar here is a
// restricted subset (default ports, last-wins query, bracketed IPv6 only)
// tailored to what the HTTP codec and router need.
type URL struct {
	Scheme   string
	Host     string
	Port     uint16
	Path     string
	Query    map[string]string
	Fragment string
}

// defaultPort returns the default port for scheme.
func defaultPort(scheme string) uint16 {
	switch scheme {
	case "https":
		return 443
	case "http":
		return 80
	default:
		return 80
	}
}

// splitScheme extracts a scheme if "://" occurs before any of '/', '?', '#'.
func splitScheme(s string) (scheme, rest string, ok bool) {
	idx := strings.Index(s, "://")
	if idx < 0 {
		return "", s, false
	}
	cand := s[:idx]
	if cand == "" || strings.ContainsAny(cand, "/?#") {
		return "", s, false
	}
	return strings.ToLower(cand), s[idx+3:], true
}

// ParseURL parses raw under the restricted grammar described above.
func ParseURL(raw string) (*URL, error) {
	if raw == "" {
		return nil, ErrInvalidURL
	}

	u := &URL{Query: make(map[string]string)}

	scheme, rest, hasScheme := splitScheme(raw)
	u.Scheme = scheme

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		u.Fragment = rest[i+1:]
		rest = rest[:i]
	}

	if i := strings.IndexByte(rest, '?'); i >= 0 {
		if err := parseQuery(rest[i+1:], u.Query); err != nil {
			return nil, err
		}
		rest = rest[:i]
	}

	var authority, path string
	if !hasScheme && strings.HasPrefix(rest, "/") {
		authority = ""
		path = rest
	} else if i := strings.IndexByte(rest, '/'); i >= 0 {
		authority = rest[:i]
		path = rest[i:]
	} else {
		authority = rest
		path = ""
	}
	if path == "" {
		path = "/"
	}
	u.Path = path

	if authority != "" {
		if err := parseAuthority(authority, u); err != nil {
			return nil, err
		}
	}
	if u.Port == 0 {
		u.Port = defaultPort(u.Scheme)
	}

	return u, nil
}

// parseAuthority strips userinfo, then parses host and optional port,
// recognizing bracketed IPv6 literals.
func parseAuthority(authority string, u *URL) error {
	if i := strings.IndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}

	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return ErrInvalidURL
		}
		u.Host = authority[:end+1]
		remainder := authority[end+1:]
		if remainder == "" {
			return nil
		}
		if remainder[0] != ':' {
			return ErrInvalidURL
		}
		return parsePort(remainder[1:], u)
	}

	if i := strings.LastIndexByte(authority, ':'); i >= 0 {
		u.Host = authority[:i]
		return parsePort(authority[i+1:], u)
	}

	u.Host = authority
	return nil
}

func parsePort(s string, u *URL) error {
	if s == "" {
		return ErrInvalidURL
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return ErrInvalidURL
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 65535 {
		return ErrInvalidURL
	}
	u.Port = uint16(n)
	return nil
}

// parseQuery fills dst from a raw query string; later keys win.
func parseQuery(raw string, dst map[string]string) error {
	if raw == "" {
		return nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		var key, value string
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key, value = pair[:i], pair[i+1:]
		} else {
			key = pair
		}
		k, err := url.QueryUnescape(key)
		if err != nil {
			k = key
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			v = value
		}
		dst[k] = v
	}
	return nil
}

// String renders u back to canonical form, eliding the port when it
// matches the scheme's default.
func (u *URL) String() string {
	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteString("://")
	}
	if u.Host != "" {
		b.WriteString(u.Host)
		if u.Port != 0 && u.Port != defaultPort(u.Scheme) {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(int(u.Port)))
		}
	}
	if u.Path == "" {
		b.WriteByte('/')
	} else {
		b.WriteString(u.Path)
	}
	if len(u.Query) > 0 {
		keys := make([]string, 0, len(u.Query))
		for k := range u.Query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('?')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			if u.Query[k] != "" {
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(u.Query[k]))
			}
		}
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}
