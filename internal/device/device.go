// Package device turns raw User-Agent strings into short human-readable
// descriptions for the audit trail.
package device

import (
	"fmt"

	"github.com/mssola/useragent"
)

// Describe summarizes a User-Agent header as "Browser on Platform", for
// example "Chrome on Linux x86_64" or "Mobile Safari on iPhone". Unknown
// or empty strings come back as "unknown".
func Describe(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)

	browser, _ := ua.Browser()
	platform := ua.Platform()
	if ua.Mobile() && ua.Model() != "" {
		platform = ua.Model()
	} else if ua.OS() != "" {
		platform = ua.OS()
	}

	switch {
	case browser != "" && platform != "":
		return fmt.Sprintf("%s on %s", browser, platform)
	case browser != "":
		return browser
	case ua.Bot():
		return "bot"
	default:
		return "unknown"
	}
}

// IsBot reports whether the User-Agent identifies an automated client.
func IsBot(rawUA string) bool {
	if rawUA == "" {
		return false
	}
	return useragent.New(rawUA).Bot()
}
