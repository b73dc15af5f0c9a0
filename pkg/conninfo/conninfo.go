// Package conninfo manipulates libpq-style connection strings as ordered
// keyword/value parameter lists.
//
// A ParamList is the structured in-memory form of a connection descriptor
// such as "host=node1 port=5432 user=app". Lists grow as needed, keep
// keywords unique, and preserve insertion order so that serialization is
// reproducible. A value explicitly set to the empty string is kept in
// storage but treated as absent on read, matching libpq behaviour where a
// blank parameter contributes nothing to the connection.
package conninfo

import (
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Param is a single connection parameter.
type Param struct {
	Keyword string
	Value   string
}

// ParamList is an ordered mapping from connection-parameter keyword to value.
// The zero value is not usable; create lists with New, NewWithDefaults, Parse,
// FromConnConfig or FromConn.
type ParamList struct {
	params []Param
	index  map[string]int // keyword -> position in params
}

// New creates an empty parameter list.
func New() *ParamList {
	return &ParamList{
		index: make(map[string]int),
	}
}

// NewWithDefaults creates a parameter list pre-populated with the driver's
// effective defaults: built-in values plus anything picked up from the
// environment (PGHOST, PGUSER and friends). Parameters whose default is
// empty are skipped.
func NewWithDefaults() (*ParamList, error) {
	cfg, err := pgconn.ParseConfig("")
	if err != nil {
		return nil, &ParseError{err: err}
	}
	return FromConnConfig(cfg), nil
}

// Set stores value under keyword, overwriting any existing entry. New
// keywords are appended, so insertion order is stable across reads.
func (l *ParamList) Set(keyword, value string) {
	if pos, ok := l.index[keyword]; ok {
		l.params[pos].Value = value
		return
	}
	l.index[keyword] = len(l.params)
	l.params = append(l.params, Param{Keyword: keyword, Value: value})
}

// Get returns the value stored under keyword. The second return is false
// when the keyword is absent or its value is empty: an empty value and a
// missing one are indistinguishable to readers.
func (l *ParamList) Get(keyword string) (string, bool) {
	pos, ok := l.index[keyword]
	if !ok || l.params[pos].Value == "" {
		return "", false
	}
	return l.params[pos].Value, true
}

// Merge copies every non-empty entry of src into the receiver. Entries of
// the receiver that src does not mention are preserved.
func (l *ParamList) Merge(src *ParamList) {
	if src == nil {
		return
	}
	for _, p := range src.params {
		if p.Value == "" {
			continue
		}
		l.Set(p.Keyword, p.Value)
	}
}

// Pairs returns a snapshot of all stored parameters in insertion order,
// including entries whose value is empty.
func (l *ParamList) Pairs() []Param {
	pairs := make([]Param, len(l.params))
	copy(pairs, l.params)
	return pairs
}

// Len returns the number of stored parameters, counting entries with empty
// values.
func (l *ParamList) Len() int {
	return len(l.params)
}

// String serializes the list to a driver-native connection string. Values
// containing whitespace, quotes or backslashes are quoted with libpq rules,
// so Parse(l.String()) reproduces the same effective key/value set. Entries
// with empty values are omitted.
func (l *ParamList) String() string {
	var b []byte
	for _, p := range l.params {
		if p.Value == "" {
			continue
		}
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = append(b, p.Keyword...)
		b = append(b, '=')
		b = appendQuoted(b, p.Value)
	}
	return string(b)
}

// appendQuoted appends value to b, single-quoting it when it contains
// characters that would otherwise break a keyword/value connection string.
func appendQuoted(b []byte, value string) []byte {
	plain := true
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case ' ', '\t', '\n', '\r', '\'', '\\':
			plain = false
		}
	}
	if plain {
		return append(b, value...)
	}
	b = append(b, '\'')
	for i := 0; i < len(value); i++ {
		if value[i] == '\'' || value[i] == '\\' {
			b = append(b, '\\')
		}
		b = append(b, value[i])
	}
	return append(b, '\'')
}

// FromConnConfig reflects a driver configuration into a ParamList. The
// result captures the effective core parameters (host, port, dbname, user,
// password, connect_timeout) followed by the configuration's runtime
// parameters in sorted order. TLS settings have no faithful keyword form on
// a parsed config and are not reflected.
func FromConnConfig(cfg *pgconn.Config) *ParamList {
	l := New()
	if cfg.Host != "" {
		l.Set("host", cfg.Host)
	}
	if cfg.Port != 0 {
		l.Set("port", strconv.Itoa(int(cfg.Port)))
	}
	if cfg.Database != "" {
		l.Set("dbname", cfg.Database)
	}
	if cfg.User != "" {
		l.Set("user", cfg.User)
	}
	if cfg.Password != "" {
		l.Set("password", cfg.Password)
	}
	if cfg.ConnectTimeout != 0 {
		l.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}

	keywords := make([]string, 0, len(cfg.RuntimeParams))
	for k := range cfg.RuntimeParams {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	for _, k := range keywords {
		if v := cfg.RuntimeParams[k]; v != "" {
			l.Set(k, v)
		}
	}
	return l
}

// FromConn reflects the negotiated parameters of a live connection into a
// ParamList, capturing what was actually used after defaulting.
func FromConn(conn *pgx.Conn) *ParamList {
	return FromConnConfig(&conn.Config().Config)
}
