// SPDX-License-Identifier: MIT
package transport

import (
	"spectro/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each value. It is used for dry runs.
type LoggingTransport struct {
	logger *log.Logger
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	lt := &LoggingTransport{logger: log.New("transport")}
	lt.logger.Infof("Using LoggingTransport")
	return lt
}

// Send logs the received data at debug level.
func (lt *LoggingTransport) Send(data any) error {
	switch v := data.(type) {
	case Column:
		var peak uint8
		for _, c := range v.Colors {
			peak = max(peak, c.R(), c.G(), c.B())
		}
		lt.logger.Debugf("column %d: %d colors, brightest channel %d", v.Seq, len(v.Colors), peak)
	default:
		lt.logger.Debugf("received %T", data)
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	lt.logger.Infof("LoggingTransport closed")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
