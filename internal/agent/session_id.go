package agent

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const sessionSuffixLen = 9

// NewSessionID returns a fresh session token of the form session_<unix millis>_<suffix>.
// Uniqueness is practical, not guaranteed; tokens are never stored or validated.
func NewSessionID() string {
	return newSessionIDAt(time.Now())
}

func newSessionIDAt(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionSuffixLen]
	return "session_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
