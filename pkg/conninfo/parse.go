package conninfo

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Parse parses a driver-native connection string (keyword/value or URL form)
// into a ParamList. The string is validated through the driver's own parser
// first, so a *ParseError carries the driver's diagnostic text. Only the
// parameters actually present in the string are extracted; blank values are
// skipped, and application_name is dropped when ignoreApplicationName is
// true.
func Parse(connString string, ignoreApplicationName bool) (*ParamList, error) {
	if _, err := pgconn.ParseConfig(connString); err != nil {
		return nil, &ParseError{err: err}
	}

	var (
		pairs []Param
		err   error
	)
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		pairs, err = parseURLPairs(connString)
	} else {
		pairs, err = parseDSNPairs(connString)
	}
	if err != nil {
		return nil, &ParseError{err: err}
	}

	l := New()
	for _, p := range pairs {
		if p.Value == "" {
			continue
		}
		if ignoreApplicationName && p.Keyword == "application_name" {
			continue
		}
		l.Set(p.Keyword, p.Value)
	}
	return l, nil
}

// parseDSNPairs scans a keyword/value connection string in appearance order,
// honouring libpq quoting: single-quoted values with backslash escapes for
// quotes and backslashes. The driver has already validated the string, so
// scan failures here indicate a malformed input that slipped through.
func parseDSNPairs(s string) ([]Param, error) {
	var pairs []Param
	i := 0
	for i < len(s) {
		// skip leading whitespace
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}

		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			return nil, fmt.Errorf("missing \"=\" after %q", s[i:])
		}
		keyword := strings.TrimRight(s[i:i+eq], " \t\n\r")
		if keyword == "" {
			return nil, fmt.Errorf("missing keyword before \"=\" at %q", s[i:])
		}
		i += eq + 1

		for i < len(s) && isSpace(s[i]) {
			i++
		}

		var value strings.Builder
		if i < len(s) && s[i] == '\'' {
			i++
			closed := false
			for i < len(s) {
				switch s[i] {
				case '\\':
					if i+1 >= len(s) {
						return nil, fmt.Errorf("unterminated escape in value for %q", keyword)
					}
					value.WriteByte(s[i+1])
					i += 2
				case '\'':
					closed = true
					i++
				default:
					value.WriteByte(s[i])
					i++
				}
				if closed {
					break
				}
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted value for %q", keyword)
			}
		} else {
			for i < len(s) && !isSpace(s[i]) {
				if s[i] == '\\' {
					if i+1 >= len(s) {
						return nil, fmt.Errorf("unterminated escape in value for %q", keyword)
					}
					value.WriteByte(s[i+1])
					i += 2
					continue
				}
				value.WriteByte(s[i])
				i++
			}
		}

		pairs = append(pairs, Param{Keyword: keyword, Value: value.String()})
	}
	return pairs, nil
}

// parseURLPairs converts a postgres:// URL into keyword/value pairs: user,
// password, host, port and dbname from the URL structure, then query
// parameters in appearance order.
func parseURLPairs(s string) ([]Param, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	var pairs []Param
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			pairs = append(pairs, Param{Keyword: "user", Value: name})
		}
		if password, ok := u.User.Password(); ok && password != "" {
			pairs = append(pairs, Param{Keyword: "password", Value: password})
		}
	}
	if u.Host != "" {
		host, port, err := net.SplitHostPort(u.Host)
		if err != nil {
			host, port = u.Host, ""
		}
		if host != "" {
			pairs = append(pairs, Param{Keyword: "host", Value: host})
		}
		if port != "" {
			pairs = append(pairs, Param{Keyword: "port", Value: port})
		}
	}
	if dbname := strings.TrimPrefix(u.Path, "/"); dbname != "" {
		pairs = append(pairs, Param{Keyword: "dbname", Value: dbname})
	}

	// url.Values is a map, so walk the raw query to keep appearance order.
	for _, kv := range strings.Split(u.RawQuery, "&") {
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		keyword, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Param{Keyword: keyword, Value: value})
	}
	return pairs, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
