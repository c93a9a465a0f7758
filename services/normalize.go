package services

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"
)

// Skills accepts either a JSON list or a comma separated string.
type Skills []string

func (s *Skills) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = list
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.New("skills must be a string or a list of strings")
	}
	*s = SplitSkills(raw)
	return nil
}

// SplitSkills splits on commas and trims every element, keeping order. Blank
// elements are dropped, so "js,,node" yields [js node] and " , " yields none.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NormalizeURL returns raw in canonical https form. Empty input stays empty.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	switch {
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	case !strings.Contains(raw, "://"):
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", errors.New("unsupported scheme " + u.Scheme)
	}
	u.Scheme = "https"

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		host = host + ":" + port
	}
	u.Host = host

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognised date " + raw)
}

// parseRange parses the required from date and the optional to date of an entry.
func parseRange(from, to string) (time.Time, *time.Time, error) {
	start, err := parseDate(from)
	if err != nil {
		return time.Time{}, nil, fieldError("from", "From date is invalid")
	}
	if strings.TrimSpace(to) == "" {
		return start, nil, nil
	}
	end, err := parseDate(to)
	if err != nil {
		return time.Time{}, nil, fieldError("to", "To date is invalid")
	}
	return start, &end, nil
}
