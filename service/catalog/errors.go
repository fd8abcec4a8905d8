package catalog

import "fmt"

// FetchError means the catalog source could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch catalog %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch catalog %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the payload is not well-formed delimited text. Line is
// 1-based and 0 when unknown.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse catalog: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse catalog: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
