package report

import (
	"fmt"
	"strings"

	"shortcutreport/internal/domain"
)

type Platform string

const (
	PlatformExtension Platform = "extension"
	PlatformIOS       Platform = "ios"
	PlatformAndroid   Platform = "android"
	PlatformOther     Platform = "other"
)

// Platforms lists the release-note platforms in matching order. The first
// platform with a keyword hit wins.
var Platforms = []Platform{PlatformExtension, PlatformIOS, PlatformAndroid}

var platformKeywords = map[Platform][]string{
	PlatformExtension: {"extension", "chrome", "firefox", "browser", "popup", "content script", "web extension"},
	PlatformIOS:       {"ios", "iphone", "ipad", "swift", "xcode", "app store", "cocoapods"},
	PlatformAndroid:   {"android", "kotlin", "java", "gradle", "play store", "aab", "apk"},
}

// PlatformStories holds release-note entries per platform, in report order.
type PlatformStories map[Platform][]string

func (p Platform) Upper() string {
	return strings.ToUpper(string(p))
}

// CategorizeByPlatform files every story of grouped by keywords found in its
// title. Entries look like "[title](url) (Team: name)".
func CategorizeByPlatform(grouped *domain.GroupedReport) PlatformStories {
	out := PlatformStories{}
	for _, team := range grouped.Teams() {
		for _, state := range team.States {
			for _, item := range state.Items {
				entry := fmt.Sprintf("[%s](%s) (Team: %s)", item.Title, item.URL, team.Name)
				p := detectPlatform(item.Title)
				out[p] = append(out[p], entry)
			}
		}
	}
	return out
}

func detectPlatform(title string) Platform {
	lower := strings.ToLower(title)
	for _, p := range Platforms {
		for _, kw := range platformKeywords[p] {
			if strings.Contains(lower, kw) {
				return p
			}
		}
	}
	return PlatformOther
}
