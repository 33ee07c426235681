package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_OSClassification(t *testing.T) {
	testCases := []struct {
		name      string
		ua        string
		os        string
		osVersion string
		icon      string
	}{
		{
			name:      "android phone",
			ua:        "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			os:        "Android",
			osVersion: "13",
			icon:      "🤖",
		},
		{
			name:      "android uppercase",
			ua:        "MOZILLA/5.0 (LINUX; ANDROID 12; SM-A525F)",
			os:        "Android",
			osVersion: "12",
			icon:      "🤖",
		},
		{
			name:      "iphone",
			ua:        "Mozilla/5.0 (iPhone; CPU iPhone OS 16_2 like Mac OS X) AppleWebKit/605.1.15 Version/16.2 Mobile Safari/604.1",
			os:        "iOS",
			osVersion: "16.2",
			icon:      "📱",
		},
		{
			name: "ipad",
			ua:   "Mozilla/5.0 (iPad; CPU OS 15_6 like Mac OS X) AppleWebKit/605.1.15",
			os:   "iOS",
			// The iPad UA also matches the version pattern.
			osVersion: "15.6",
			icon:      "📱",
		},
		{
			name:      "windows 10",
			ua:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			os:        "Windows",
			osVersion: "10/11",
			icon:      "💻",
		},
		{
			name:      "windows 7",
			ua:        "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36",
			os:        "Windows",
			osVersion: "7",
			icon:      "💻",
		},
		{
			name:      "macos",
			ua:        "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/16.1 Safari/605.1.15",
			os:        "macOS",
			osVersion: "10.15.7",
			icon:      "🖥️",
		},
		{
			name: "linux desktop",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/119.0",
			os:   "Linux",
			icon: "🐧",
		},
		{
			name: "unrecognized",
			ua:   "curl/8.4.0",
			os:   Unknown,
			icon: "❓",
		},
		{
			name: "empty",
			ua:   "",
			os:   Unknown,
			icon: "❓",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info := Parse(tc.ua)
			assert.Equal(t, tc.os, info.OS)
			assert.Equal(t, tc.osVersion, info.OSVersion)
			assert.Equal(t, tc.icon, info.Icon)
		})
	}
}

func TestParse_Browser(t *testing.T) {
	testCases := []struct {
		name    string
		ua      string
		browser string
	}{
		{"chrome", "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36", "Chrome"},
		{"chrome ios", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) CriOS/120.0 Mobile Safari", "Chrome"},
		{"edge", "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36 Edg/120.0", "Edge"},
		{"samsung", "Mozilla/5.0 (Linux; Android 13) SamsungBrowser/23.0 Chrome/115.0 Mobile Safari", "Samsung Internet"},
		{"opera", "Mozilla/5.0 (Windows NT 10.0) Chrome/119.0 Safari/537.36 OPR/105.0", "Opera"},
		{"firefox", "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/119.0", "Firefox"},
		{"safari", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Version/16.1 Safari/605.1.15", "Safari"},
		{"unknown", "curl/8.4.0", Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.browser, Parse(tc.ua).Browser)
		})
	}
}

func TestParse_DeviceType(t *testing.T) {
	testCases := []struct {
		name       string
		ua         string
		deviceType string
	}{
		{"android mobile", "Mozilla/5.0 (Linux; Android 13) Chrome/120.0 Mobile Safari", "Móvil"},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_2 like Mac OS X)", "Móvil"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 15_6 like Mac OS X)", "Tablet"},
		{"android tablet", "Mozilla/5.0 (Linux; Android 12; Tablet; SM-T500)", "Tablet"},
		{"windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", "Escritorio"},
		{"unknown", "curl/8.4.0", "Escritorio"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.deviceType, Parse(tc.ua).DeviceType)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	ua := "Mozilla/5.0 (Linux; Android 13; Pixel 7) Chrome/120.0 Mobile Safari/537.36"
	first := Parse(ua)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Parse(ua))
	}
}
