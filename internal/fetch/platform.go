// Package fetch - platform.go provides site builder detection and builder-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a hosted site builder common among clubs and initiatives.
type Platform string

const (
	// PlatformJimdo is the Jimdo site builder
	PlatformJimdo Platform = "jimdo"
	// PlatformWix is the Wix site builder
	PlatformWix Platform = "wix"
	// PlatformWordPress is a wordpress.com hosted blog
	PlatformWordPress Platform = "wordpress"
	// PlatformMeetup is a meetup.com group page
	PlatformMeetup Platform = "meetup"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the site builder from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(host, "jimdofree.com") ||
		strings.Contains(host, "jimdosite.com") ||
		strings.Contains(host, "jimdo.com"):
		return PlatformJimdo
	case strings.Contains(host, "wixsite.com"):
		return PlatformWix
	case strings.Contains(host, "wordpress.com"):
		return PlatformWordPress
	case strings.Contains(host, "meetup.com"):
		return PlatformMeetup
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformJimdo:
		return []string{
			"#content_area",
			".jtpl-content",
			".content-options",
		}
	case PlatformWix:
		return []string{
			"#PAGES_CONTAINER",
			"main",
		}
	case PlatformWordPress:
		return []string{
			".entry-content",
			"article",
			"main",
		}
	case PlatformMeetup:
		return []string{
			"#about-section",
			"main",
		}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
		"#cookie-notice",
	}

	switch platform {
	case PlatformJimdo:
		return append(common, ".jimdo-free-footer-ad", "#cc-inner-footer")
	case PlatformWix:
		return append(common, "#WIX_ADS", "#SITE_FOOTER")
	case PlatformWordPress:
		return append(common, ".comments-area", ".wpcnt", "#jp-post-flair")
	case PlatformMeetup:
		return append(common, "[data-testid='join-group-button']", ".sticky-footer")
	default:
		return common
	}
}
