package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board whose page layout is known.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

// Selectors locate the posting body on a page and the parts to discard.
type Selectors struct {
	Content []string
	Noise   []string
}

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
}

// DetectPlatform identifies the job board from a posting URL.
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range platformHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.platform
		}
	}
	return PlatformUnknown
}

// genericContent matches the posting body on unknown boards.
var genericContent = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// commonNoise covers application forms, EEO statements, share widgets and consent banners.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	"[data-testid='eeo']",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

var platformSelectors = map[Platform]Selectors{
	PlatformGreenhouse: {
		Content: []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		Noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		Content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		Noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	PlatformWorkday: {
		Content: []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		Noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
}

// SelectorsFor returns the selectors used to extract a posting from platform.
func SelectorsFor(platform Platform) Selectors {
	sel, ok := platformSelectors[platform]
	if !ok {
		return Selectors{
			Content: append([]string(nil), genericContent...),
			Noise:   append([]string(nil), commonNoise...),
		}
	}
	noise := make([]string, 0, len(commonNoise)+len(sel.Noise))
	noise = append(noise, commonNoise...)
	noise = append(noise, sel.Noise...)
	return Selectors{
		Content: append([]string(nil), sel.Content...),
		Noise:   noise,
	}
}
