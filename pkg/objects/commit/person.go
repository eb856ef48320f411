package commit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Person represents author or committer information in a commit header.
//
// Header format:
// ┌─────────────────────────────────────────────────────────────────┐
// │ Name <email> timestamp timezone                                 │
// └─────────────────────────────────────────────────────────────────┘
//
// Example: "John Doe <john@example.com> 1609459200 +0000"
type Person struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// personPattern matches "Name <email> timestamp timezone"
var personPattern = regexp.MustCompile(`^(.*?) ?<([^>]*)> (\d+) ([+-]\d{4})$`)

// ParsePerson parses the value of an author or committer header (the part
// after the keyword). minFields is the number of whitespace separated fields
// the value must have for the field-based fallback to apply.
//
// Names containing spaces are handled by the regular pattern. When the
// pattern does not match, the value is split on whitespace and read as
// name, email, timestamp, timezone.
func ParsePerson(value string, minFields int) (Person, bool) {
	fields := strings.Fields(value)
	if len(fields) < minFields {
		return Person{}, false
	}

	if m := personPattern.FindStringSubmatch(strings.TrimSpace(value)); m != nil {
		ts, err := strconv.ParseInt(m[3], 10, 64)
		if err == nil {
			return Person{
				Name:      strings.TrimSpace(m[1]),
				Email:     m[2],
				Timestamp: ts,
				Timezone:  m[4],
			}, true
		}
	}

	p := Person{
		Name:  fields[0],
		Email: stripAngles(fields[1]),
	}
	if len(fields) >= 4 {
		if ts, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			p.Timestamp = ts
		}
		p.Timezone = fields[3]
	}
	return p, true
}

// When returns the timestamp in the person's own timezone.
func (p Person) When() (time.Time, error) {
	loc, err := parseTimezone(p.Timezone)
	if err != nil {
		return time.Unix(p.Timestamp, 0).UTC(), err
	}
	return time.Unix(p.Timestamp, 0).In(loc), nil
}

// String returns "Name <email>"
func (p Person) String() string {
	return fmt.Sprintf("%s <%s>", p.Name, p.Email)
}

func stripAngles(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
}

// parseTimezone parses timezone string like "+0530" or "-0800" and returns a Location
func parseTimezone(tz string) (*time.Location, error) {
	if len(tz) != 5 {
		return nil, fmt.Errorf("invalid timezone length: %q", tz)
	}

	sign := tz[0]
	if sign != '+' && sign != '-' {
		return nil, fmt.Errorf("invalid timezone sign: %c", sign)
	}

	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone hours: %w", err)
	}

	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone minutes: %w", err)
	}

	offset := hours*3600 + minutes*60
	if sign == '-' {
		offset = -offset
	}

	return time.FixedZone(tz, offset), nil
}
