// SPDX-License-Identifier: EPL-2.0

package whispercpp

import "log/slog"

type config struct {
	language string
	logger   *slog.Logger
}

// Option configures a Recognizer.
type Option func(*config)

// WithLanguage sets the language used when Recognize is given none.
func WithLanguage(lang string) Option {
	return func(c *config) { c.language = lang }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
