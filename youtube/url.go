package youtube

import "regexp"

var (
	watchIDRegex  = regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`)
	shortIDRegex  = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`)
	shortsIDRegex = regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{11})`)
	embedIDRegex  = regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})`)
	bareIDRegex   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID parses a video ID out of a watch URL, youtu.be short link,
// shorts URL, embed URL, or a bare 11-character ID.
func ExtractVideoID(urlOrID string) (string, error) {
	for _, re := range []*regexp.Regexp{watchIDRegex, shortIDRegex, shortsIDRegex, embedIDRegex} {
		if m := re.FindStringSubmatch(urlOrID); m != nil {
			return m[1], nil
		}
	}
	if bareIDRegex.MatchString(urlOrID) {
		return urlOrID, nil
	}
	return "", ErrInvalidURL
}
