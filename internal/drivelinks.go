package internal

import (
	"fmt"
	"regexp"
	"strings"
)

const driveIDPattern = `([a-zA-Z0-9_-]{10,})`

var (
	driveFilePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^https?://drive\.google\.com/file/d/` + driveIDPattern),
		regexp.MustCompile(`^https?://drive\.google\.com/open\?id=` + driveIDPattern),
		regexp.MustCompile(`^https?://drive\.google\.com/uc\?id=` + driveIDPattern),
	}

	driveFolderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^https?://drive\.google\.com/drive/folders/` + driveIDPattern),
		regexp.MustCompile(`^https?://drive\.google\.com/drive/u/\d/folders/` + driveIDPattern),
	}

	// driveURLRegex matches any of the five recognised shapes inside free text
	driveURLRegex = regexp.MustCompile(
		`https?://drive\.google\.com/(?:file/d/[a-zA-Z0-9_-]{10,}|open\?id=[a-zA-Z0-9_-]{10,}|uc\?id=[a-zA-Z0-9_-]{10,}|drive/(?:u/\d/)?folders/[a-zA-Z0-9_-]{10,})`,
	)

	fuzzyDriveIDRegexes = []*regexp.Regexp{
		regexp.MustCompile(`/d/` + driveIDPattern),
		regexp.MustCompile(`/folders/` + driveIDPattern),
		regexp.MustCompile(`[?&]id=` + driveIDPattern),
	}
)

// ExtractLinks returns the Drive URLs found in text, deduplicated in first-seen order
func ExtractLinks(text string) []string {
	return ExtractAllLinks([]string{text})
}

// ExtractAllLinks scans several texts and deduplicates across the whole batch
func ExtractAllLinks(texts []string) []string {
	seen := make(map[string]struct{})
	var links []string

	for _, text := range texts {
		for _, link := range driveURLRegex.FindAllString(text, -1) {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}

	return links
}

// Classify determines whether a URL references a Drive file or folder.
// File shapes are checked before folder shapes.
func Classify(url string) DriveLink {
	for _, re := range driveFilePatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return DriveLink{URL: url, Kind: DriveKindFile, ID: m[1]}
		}
	}
	for _, re := range driveFolderPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return DriveLink{URL: url, Kind: DriveKindFolder, ID: m[1]}
		}
	}
	return DriveLink{URL: url, Kind: DriveKindUnknown}
}

// ClassifyAll classifies every URL in order
func ClassifyAll(urls []string) []DriveLink {
	links := make([]DriveLink, 0, len(urls))
	for _, u := range urls {
		links = append(links, Classify(u))
	}
	return links
}

// FuzzyDriveID pulls a file ID out of a non-canonical Drive URL
// such as https://drive.google.com/a/example.com/file/d/<id>/edit
func FuzzyDriveID(url string) (string, bool) {
	for _, re := range fuzzyDriveIDRegexes {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// LinksMarkdown renders scan results as a markdown list grouped by kind
func LinksMarkdown(videoURL string, links []DriveLink) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Google Drive links\n\nSource: %s\n\n", videoURL)
	if len(links) == 0 {
		b.WriteString("No Google Drive links found.\n")
		return b.String()
	}

	for _, kind := range []DriveKind{DriveKindFile, DriveKindFolder, DriveKindUnknown} {
		var section []DriveLink
		for _, link := range links {
			if link.Kind == kind {
				section = append(section, link)
			}
		}
		if len(section) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s (%d)\n\n", kind, len(section))
		for _, link := range section {
			if link.ID != "" {
				fmt.Fprintf(&b, "- `%s` %s\n", link.ID, link.URL)
				continue
			}
			fmt.Fprintf(&b, "- %s\n", link.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// LinkURLs returns the URL of each link, one per line
func LinkURLs(links []DriveLink) string {
	urls := make([]string, 0, len(links))
	for _, link := range links {
		urls = append(urls, link.URL)
	}
	return strings.Join(urls, "\n")
}
