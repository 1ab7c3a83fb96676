package identity

import (
	"net/url"
	"strings"

	"leadpipe/internal/models"
)

// Traffic source classifications.
const (
	SourceInstagramOrganic = "instagram_organic"
	SourceWhatsAppDirect   = "whatsapp_direct"
	SourceDirect           = "direct"
	SourceReferral         = "referral"
)

// classifyTraffic applies first-touch attribution priority:
// explicit campaign parameter, then known social referrer, then known
// messaging referrer, then empty referrer (direct), else referral.
func classifyTraffic(pageURL, referrer string) (string, models.UTM) {
	var params url.Values
	if u, err := url.Parse(pageURL); err == nil {
		params = u.Query()
	} else {
		params = url.Values{}
	}

	utm := models.UTM{
		Campaign: params.Get("utm_campaign"),
		Medium:   params.Get("utm_medium"),
		Content:  params.Get("utm_content"),
	}

	if src := params.Get("utm_source"); src != "" {
		return src, utm
	}
	if strings.Contains(referrer, "instagram.com") {
		return SourceInstagramOrganic, utm
	}
	if strings.Contains(referrer, "whatsapp") || params.Get("source") == "whatsapp" {
		return SourceWhatsAppDirect, utm
	}
	if referrer == "" {
		return SourceDirect, utm
	}
	return SourceReferral, utm
}
