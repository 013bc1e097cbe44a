package logger

import (
	"log/slog"
	"strings"
	"time"
)

// Helpers return the empty Attr for zero inputs so call sites never need nil checks;
// slog drops empty attributes.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records a single error under "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration records a duration under "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed records the time since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// RequestID records the HTTP request id.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method records the HTTP method.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path records the URL path.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Host records the request host.
func Host(host string) slog.Attr {
	if host == "" {
		return slog.Attr{}
	}
	return slog.String("host", host)
}

// StatusCode records the HTTP status.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// ClientIP records the client address.
func ClientIP(ip string) slog.Attr {
	if ip == "" {
		return slog.Attr{}
	}
	return slog.String("client_ip", ip)
}

// UserAgent records the User-Agent header.
func UserAgent(ua string) slog.Attr {
	if ua == "" {
		return slog.Attr{}
	}
	return slog.String("user_agent", ua)
}

// BytesOut records the response size.
func BytesOut(n int64) slog.Attr {
	return slog.Int64("bytes_out", n)
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event names what happened.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Action names the operation being attempted.
func Action(action string) slog.Attr {
	return slog.String("action", action)
}

// Bundle records the frontend bundle a request was routed to.
func Bundle(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("bundle", name)
}

// SessionID records a shortened session identifier. Only the first eight
// characters are kept so logs cannot be replayed as cookies.
func SessionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return slog.String("session_id", id)
}

// Email records an address with the local part masked, e.g. "j***@example.com".
func Email(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return slog.String("email", "***")
	}
	return slog.String("email", addr[:1]+"***"+addr[at:])
}

// TaskID records a queue task id.
func TaskID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("task_id", id)
}

// RetryCount records how many attempts preceded this one.
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}
