// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ips

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is matched by every error the conversion pipeline returns.
var ErrInvalidFormat = errors.New("invalid IPS format")

// FormatError describes why a document could not be converted.
type FormatError struct {
	Msg string // Human readable reason, includes the offending header text when relevant
	Err error  // Underlying decode error, if any
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidFormat, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidFormat, e.Msg)
}

// Is reports whether target is ErrInvalidFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
