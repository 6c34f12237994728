package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

// HeadersMiddleware sets the hardening headers for a JSON and websocket API.
// Responses carry interview content, so nothing is cacheable.
func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	csp := "default-src 'none'; " +
		"connect-src 'self'" + connectSources(cfg.AllowedOrigins) + "; " +
		"frame-ancestors 'none'; " +
		"base-uri 'none'"

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderReferrerPolicy, "no-referrer")
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Set(fiber.HeaderContentSecurityPolicy, csp)

		if !cfg.IsDevelopment {
			c.Set(fiber.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		}

		return c.Next()
	}
}

// connectSources lists the allowed origins plus their websocket variants.
func connectSources(origins []string) string {
	var b strings.Builder
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		b.WriteString(" " + origin)
		switch {
		case strings.HasPrefix(origin, "https://"):
			b.WriteString(" wss://" + strings.TrimPrefix(origin, "https://"))
		case strings.HasPrefix(origin, "http://"):
			b.WriteString(" ws://" + strings.TrimPrefix(origin, "http://"))
		}
	}
	return b.String()
}
