// Package acquisition turns raw serial chunks into sample batches and runs
// the background reader that feeds them to the pipeline.
package acquisition

import (
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates readings on the wire.
const Delimiter = "\r\n"

// DecodeError is a non-empty token that is not a decimal integer.
// It is contained: the token is skipped and the rest of the chunk kept.
type DecodeError struct {
	Token string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode token %q: %v", e.Token, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode splits chunk on CRLF and parses every non-empty token as a decimal
// integer. Malformed tokens are reported and skipped.
func Decode(chunk []byte) ([]int, []*DecodeError) {
	if len(chunk) == 0 {
		return nil, nil
	}

	var (
		values []int
		errs   []*DecodeError
	)
	for _, tok := range strings.Split(string(chunk), Delimiter) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			errs = append(errs, &DecodeError{Token: tok, Err: err})
			continue
		}
		values = append(values, v)
	}
	return values, errs
}
