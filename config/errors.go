// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrNoEndpoint        = errors.New("config: endpoint is required")
	ErrBodyConflict      = errors.New("config: body and body_file are mutually exclusive")
	ErrNegativeTimeout   = errors.New("config: timeout_ms must not be negative")
	ErrInvalidBufferSize = errors.New("config: buffer_bytes must not be negative")
	ErrNoOutput          = errors.New("config: output is required")
	ErrUnknownRedirect   = errors.New("config: unknown redirect policy")
	ErrUnknownLevel      = errors.New("config: unknown logging level")
	ErrMalformedHeader   = errors.New("config: header must look like \"Key: value\"")
)
