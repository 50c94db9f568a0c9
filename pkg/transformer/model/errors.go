package model

import (
	"fmt"
	"io"
	"strings"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 2000

// StatusError builds an ErrProvider-wrapped error from a non-2xx response.
func StatusError(provider, status string, body io.Reader) error {
	var detail string
	if body != nil {
		data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody+1))
		detail = abbreviate(strings.TrimSpace(string(data)), maxErrorBody)
	}
	if detail == "" {
		return fmt.Errorf("%w: %s: %s", ErrProvider, provider, status)
	}
	return fmt.Errorf("%w: %s: %s; body: %s", ErrProvider, provider, status, detail)
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
