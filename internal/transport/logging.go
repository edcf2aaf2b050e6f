// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"

	applog "wavemath/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary of
// each frame. It is the fallback when no network transport is enabled.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the frame type and its encoded size.
func (lt *LoggingTransport) Send(data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		applog.Warnf("LOG_TRANSPORT: Received (%T), JSON marshal error: %v", data, err)
		return nil
	}
	applog.Debugf("LOG_TRANSPORT: Received (%T), %d bytes", data, len(encoded))
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LOG_TRANSPORT: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
