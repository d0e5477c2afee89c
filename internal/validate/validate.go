// Package validate provides input validation helpers for dailyclocks.
package validate

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/manav03panchal/dailyclocks/internal/errors"
)

const (
	// MaxLabelLength is the maximum length of a timer label, in runes.
	MaxLabelLength = 64
	// MaxTimerIDLength is the maximum length of a caller-chosen timer id.
	MaxTimerIDLength = 64
	// MaxURLLength is the maximum length for a URL.
	MaxURLLength = 2048
)

// timerIDRegex validates caller-chosen ids. Generated UUIDs always match.
var timerIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._:-]*$`)

// Label validates a timer label after trimming.
func Label(label string) error {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return errors.InvalidInput(errors.ErrEmptyLabel, "label", label)
	}
	if utf8.RuneCountInString(trimmed) > MaxLabelLength {
		return errors.NewUserErrorWithField("label", label,
			"Label too long",
			"Labels must be "+strconv.Itoa(MaxLabelLength)+" characters or fewer")
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return errors.NewUserErrorWithField("label", label,
				"Label contains control characters",
				"Use printable characters only")
		}
	}
	return nil
}

// TimerID validates a caller-chosen timer id.
func TimerID(id string) error {
	if id == "" {
		return errors.NewUserError("Timer id cannot be empty", "Omit --id to generate one")
	}
	if len(id) > MaxTimerIDLength {
		return errors.NewUserErrorWithField("id", id,
			"Timer id too long",
			"Timer ids must be "+strconv.Itoa(MaxTimerIDLength)+" characters or fewer")
	}
	if !timerIDRegex.MatchString(id) {
		return errors.NewUserErrorWithField("id", id,
			"Invalid timer id format",
			"Timer ids must start with a letter or number and contain only letters, numbers, dashes, underscores, colons, or periods")
	}
	return nil
}

// URL validates a URL for use as a webhook endpoint.
func URL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL format",
			"Provide a valid URL starting with https://")
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL scheme",
			"URLs must use https:// (or http:// for localhost)")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL: missing hostname",
			"Provide a valid URL like https://example.com/webhook")
	}

	isLocalhost := hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"

	if parsed.Scheme == "http" && !isLocalhost {
		return errors.NewUserErrorWithField("url", rawURL,
			"HTTP not allowed for external URLs",
			"Use https:// for security. HTTP is only allowed for localhost.")
	}

	if !isLocalhost {
		if err := checkInternalIP(hostname); err != nil {
			return err
		}
	}

	return nil
}

// checkInternalIP checks if a hostname is or resolves to an internal IP.
// A failed lookup passes; delivery reports it later.
func checkInternalIP(hostname string) error {
	if ip := net.ParseIP(hostname); ip != nil {
		if isInternalIP(ip) {
			return errors.NewUserErrorWithField("url", hostname,
				"Internal IP addresses not allowed",
				"Webhook URLs must point to external services")
		}
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return nil
	}

	for _, ip := range ips {
		if isInternalIP(ip) {
			return errors.NewUserErrorWithField("url", hostname,
				"Hostname resolves to internal IP",
				"Webhook URLs must point to external services")
		}
	}

	return nil
}

var privateRanges = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"fc00::/7",
	"fe80::/10",
	"::1/128",
}

// isInternalIP checks if an IP is in a private/internal range.
func isInternalIP(ip net.IP) bool {
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
