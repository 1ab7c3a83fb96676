package identity

import (
	"net"
	"strings"

	"leadpipe/internal/common/config"
)

// DetectTestMode reports whether the page host is outside the
// production deployment. Any non-production environment is test mode
// regardless of host. Ports are ignored so localhost:8080 matches
// localhost.
func DetectTestMode(app config.AppConfig, hostname string) bool {
	if !strings.EqualFold(app.Environment, "production") {
		return true
	}
	if app.ProductionHost == "" {
		return false
	}
	host := hostname
	if h, _, err := net.SplitHostPort(hostname); err == nil {
		host = h
	}
	return !strings.EqualFold(host, app.ProductionHost)
}

// OptionsFromConfig derives manager options from configuration,
// detecting test mode from the page host. Test-mode identities are
// flagged on every envelope so downstream consumers can filter them.
func OptionsFromConfig(app config.AppConfig, id config.IdentityConfig, hostname string) Options {
	return Options{
		LeadTTL:        id.LeadTTL(),
		SessionTimeout: id.SessionTimeout(),
		TestMode:       DetectTestMode(app, hostname),
	}
}
