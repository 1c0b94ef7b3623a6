// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"

	"earshot/internal/log"
)

// LoggingTransport implements the Transport interface by logging data to the console.
type LoggingTransport struct {
	logger *log.Logger
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	lt := &LoggingTransport{logger: log.New("transport")}
	lt.logger.Debugf("using LoggingTransport")
	return lt
}

// Send logs the type and encoded size of data, and the full JSON at debug
// level. It only fails when data cannot be encoded.
func (lt *LoggingTransport) Send(data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		lt.logger.Errorf("cannot encode %T: %v", data, err)
		return err
	}
	lt.logger.Infof("sent %T (%d bytes)", data, len(payload))
	lt.logger.Debugf("%s", payload)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	lt.logger.Debugf("close called")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
