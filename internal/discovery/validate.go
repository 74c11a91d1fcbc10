package discovery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nearlink-net/nearlink/internal/domain"
)

// usernamePattern is the full accepted character set: letters, digits,
// spaces, hyphen, underscore and period.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9 _.\-]+$`)

// validateRegistration runs the registration checks in a fixed order and
// returns the first failure. The username is trimmed in place so the
// stored record carries the canonical form.
func validateRegistration(reg *Registration) error {
	if len(reg.PeerID) < MinPeerIDLength {
		return domain.ErrInvalidPeerID
	}
	if reg.Username == "" {
		return domain.ErrMissingUsername
	}

	reg.Username = strings.TrimSpace(reg.Username)
	if n := utf8.RuneCountInString(reg.Username); n < 3 || n > 20 {
		return domain.ErrUsernameLength
	}
	if !usernamePattern.MatchString(reg.Username) {
		return domain.ErrUsernameChars
	}

	if !reg.Location.Valid() {
		return domain.ErrInvalidLocation
	}

	if reg.Avatar == "" || utf8.RuneCountInString(reg.Avatar) > 10 {
		return domain.ErrInvalidAvatar
	}
	return nil
}
