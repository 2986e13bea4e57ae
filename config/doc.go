// SPDX-License-Identifier: EPL-2.0

// Package config loads the YAML description of a streaming request.
//
//	endpoint: https://tts.example.com/v1/speak
//	body: '{"text":"hello","voice":"alloy"}'
//	timeout_ms: 5000
//	headers:
//	  - "Content-Type: application/json"
//	  - "Authorization: Bearer secret"
//	format: ""          # empty: pick the decoder from Content-Type
//	output: hello.wav
//	reconnect: true
//	redirect: force     # none, strict or force
//	buffer_bytes: 65536
//	logging:
//	  level: info
//	  json: false
//
// Omitted keys keep their defaults; see Parse.
package config
