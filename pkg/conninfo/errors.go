package conninfo

// ParseError reports a connection string the driver could not parse. Callers
// must not proceed with a partially-parsed result; the wrapped error carries
// the parser's diagnostic text.
type ParseError struct {
	err error
}

func (e *ParseError) Error() string {
	return "unable to parse conninfo string: " + e.err.Error()
}

// Unwrap exposes the driver's parse error.
func (e *ParseError) Unwrap() error {
	return e.err
}
