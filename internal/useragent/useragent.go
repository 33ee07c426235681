package useragent

import (
	"regexp"
	"strings"

	"devocional-backend/internal/model"
)

// Unknown is the fallback value for any field that cannot be classified.
const Unknown = "Desconocido"

var (
	androidVerRe = regexp.MustCompile(`(?i)android[ /]?(\d+(?:\.\d+)*)`)
	iosVerRe     = regexp.MustCompile(`(?i)os (\d+(?:[._]\d+)*) like mac os x`)
	windowsVerRe = regexp.MustCompile(`(?i)windows nt (\d+(?:\.\d+)*)`)
	macVerRe     = regexp.MustCompile(`(?i)mac os x (\d+(?:[._]\d+)*)`)
)

// windowsVersions maps NT kernel versions to their marketing names.
var windowsVersions = map[string]string{
	"10.0": "10/11",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
}

// Parse classifies a raw user-agent string into structured device info.
// It is deterministic and never fails: unrecognizable input degrades to
// Desconocido rather than an error.
func Parse(ua string) model.DeviceInfo {
	lower := strings.ToLower(ua)

	info := model.DeviceInfo{
		DeviceType: deviceType(lower),
		Browser:    browser(lower),
	}
	info.OS, info.OSVersion, info.Icon = operatingSystem(ua, lower)
	return info
}

func operatingSystem(ua, lower string) (os, version, icon string) {
	switch {
	case strings.Contains(lower, "android"):
		os, icon = "Android", "🤖"
		if m := androidVerRe.FindStringSubmatch(ua); m != nil {
			version = m[1]
		}
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"), strings.Contains(lower, "ipod"):
		os, icon = "iOS", "📱"
		if m := iosVerRe.FindStringSubmatch(ua); m != nil {
			version = strings.ReplaceAll(m[1], "_", ".")
		}
	case strings.Contains(lower, "windows"):
		os, icon = "Windows", "💻"
		if m := windowsVerRe.FindStringSubmatch(ua); m != nil {
			version = m[1]
			if name, ok := windowsVersions[version]; ok {
				version = name
			}
		}
	case strings.Contains(lower, "mac os x"), strings.Contains(lower, "macintosh"):
		os, icon = "macOS", "🖥️"
		if m := macVerRe.FindStringSubmatch(ua); m != nil {
			version = strings.ReplaceAll(m[1], "_", ".")
		}
	case strings.Contains(lower, "linux"):
		os, icon = "Linux", "🐧"
	default:
		os, icon = Unknown, "❓"
	}
	return os, version, icon
}

// browser matching is ordered: Chromium-family UAs also contain "safari",
// and Edge/Opera/Samsung also contain "chrome".
func browser(lower string) string {
	switch {
	case strings.Contains(lower, "edg/"), strings.Contains(lower, "edge/"):
		return "Edge"
	case strings.Contains(lower, "samsungbrowser"):
		return "Samsung Internet"
	case strings.Contains(lower, "opr/"), strings.Contains(lower, "opera"):
		return "Opera"
	case strings.Contains(lower, "firefox"), strings.Contains(lower, "fxios"):
		return "Firefox"
	case strings.Contains(lower, "crios"), strings.Contains(lower, "chrome"):
		return "Chrome"
	case strings.Contains(lower, "safari"):
		return "Safari"
	default:
		return Unknown
	}
}

func deviceType(lower string) string {
	switch {
	case strings.Contains(lower, "ipad"), strings.Contains(lower, "tablet"):
		return "Tablet"
	case strings.Contains(lower, "mobile"), strings.Contains(lower, "iphone"), strings.Contains(lower, "android"):
		return "Móvil"
	default:
		return "Escritorio"
	}
}
