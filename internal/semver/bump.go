// Copyright (c) 2024 santosr2
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	mastermindsSemver "github.com/Masterminds/semver/v3"
)

// Mode selects which bump strategy Bump applies.
type Mode string

const (
	ModeSemver  Mode = "semver"
	ModeCalver  Mode = "calver"
	ModeTinyinc Mode = "tinyinc"
)

// Level selects which semver component a ModeSemver bump increments.
// Ignored by ModeCalver and ModeTinyinc.
type Level string

const (
	LevelMajor Level = "major"
	LevelMinor Level = "minor"
	LevelPatch Level = "patch"
)

// BumpOptions carries the inputs a bump needs beyond the Version itself.
type BumpOptions struct {
	// PreTag, for ModeSemver, appends "-<tag>" to the bumped core version
	// without altering the core numbers.
	PreTag string
	// CalverFormat is the date-token template for ModeCalver. Defaults to
	// "YYYY.0M.MICRO" when empty.
	CalverFormat string
	// Today is the caller-supplied reference date for ModeCalver. Bump
	// never calls time.Now() itself so that callers control determinism.
	Today time.Time
}

const defaultCalverFormat = "YYYY.0M.MICRO"

// Bump applies mode to v and returns the resulting Version. See the
// package doc and spec.md §4.A for the exact semantics of each strategy.
func Bump(v Version, mode Mode, level Level, opts BumpOptions) (Version, error) {
	switch mode {
	case ModeSemver:
		return bumpSemver(v, level, opts.PreTag)
	case ModeCalver:
		return bumpCalver(v, opts.CalverFormat, opts.Today)
	case ModeTinyinc:
		return bumpTinyinc(v)
	default:
		return Version{}, fmt.Errorf("unknown bump mode %q", mode)
	}
}

// bumpSemver implements the semver strategy: major zeroes minor/patch,
// minor zeroes patch, patch adds one. Re-bumping a version that already
// carries a prerelease, with no new preTag supplied, strips the
// prerelease and returns the same core version rather than advancing it
// further — the "finalize a release candidate" workflow.
func bumpSemver(v Version, level Level, preTag string) (Version, error) {
	parsed, err := mastermindsSemver.NewVersion(v.Raw)
	if err != nil {
		return Version{}, &UnbumpableVersionError{Raw: v.Raw, Mode: ModeSemver, Reason: err.Error()}
	}

	if parsed.Prerelease() != "" && preTag == "" {
		finalRaw := fmt.Sprintf("%d.%d.%d", parsed.Major(), parsed.Minor(), parsed.Patch())
		finalParsed, err := mastermindsSemver.NewVersion(finalRaw)
		if err != nil {
			return Version{}, fmt.Errorf("finalize prerelease %q: %w", v.Raw, err)
		}
		return Version{Raw: finalRaw, Kind: KindSemver, parsed: finalParsed}, nil
	}

	major, minor, patch := parsed.Major(), parsed.Minor(), parsed.Patch()
	switch level {
	case LevelMajor:
		major, minor, patch = major+1, 0, 0
	case LevelMinor:
		minor, patch = minor+1, 0
	case LevelPatch:
		patch++
	default:
		return Version{}, fmt.Errorf("unknown bump level %q", level)
	}

	newRaw := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if preTag != "" {
		newRaw = newRaw + "-" + preTag
	}
	newParsed, err := mastermindsSemver.NewVersion(newRaw)
	if err != nil {
		return Version{}, fmt.Errorf("construct bumped version %q: %w", newRaw, err)
	}
	return Version{Raw: newRaw, Kind: KindSemver, parsed: newParsed}, nil
}

var calverTokenPattern = regexp.MustCompile(`YYYY|YY|0M|MM|0D|DD|MICRO`)

// calverFieldValues maps the date tokens (excluding MICRO) to their
// rendering for the given date.
func calverFieldValues(today time.Time) map[string]string {
	return map[string]string{
		"YYYY": fmt.Sprintf("%04d", today.Year()),
		"YY":   fmt.Sprintf("%d", today.Year()%100),
		"0M":   fmt.Sprintf("%02d", int(today.Month())),
		"MM":   fmt.Sprintf("%d", int(today.Month())),
		"0D":   fmt.Sprintf("%02d", today.Day()),
		"DD":   fmt.Sprintf("%d", today.Day()),
	}
}

// renderCalver substitutes every token in format, using micro for MICRO.
func renderCalver(format string, today time.Time, micro int) string {
	fields := calverFieldValues(today)
	return calverTokenPattern.ReplaceAllStringFunc(format, func(tok string) string {
		if tok == "MICRO" {
			return strconv.Itoa(micro)
		}
		return fields[tok]
	})
}

// calverPeriodRegexp builds a regexp that matches a rendered calver string
// for "today", capturing the MICRO segment so a prior version's micro
// counter can be recovered and compared to today's period.
func calverPeriodRegexp(format string, today time.Time) *regexp.Regexp {
	fields := calverFieldValues(today)
	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range calverTokenPattern.FindAllStringIndex(format, -1) {
		b.WriteString(regexp.QuoteMeta(format[last:loc[0]]))
		tok := format[loc[0]:loc[1]]
		if tok == "MICRO" {
			b.WriteString(`(?P<micro>\d+)`)
		} else {
			b.WriteString(regexp.QuoteMeta(fields[tok]))
		}
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(format[last:]))
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// bumpCalver substitutes date tokens using today, reusing the prior
// MICRO counter (incremented by one) when the old raw already belongs to
// today's period, or starting MICRO at 0 for a new period. When format
// carries no MICRO token, the rightmost numeric run of the rendered
// string is incremented instead, per spec.md's literal "rightmost
// numeric segment is incremented" rule.
func bumpCalver(v Version, format string, today time.Time) (Version, error) {
	if format == "" {
		format = defaultCalverFormat
	}

	if !strings.Contains(format, "MICRO") {
		rendered := renderCalver(format, today, 0)
		return Version{Raw: incrementRightmostNumber(rendered), Kind: KindCalver}, nil
	}

	micro := 0
	if re := calverPeriodRegexp(format, today); re != nil {
		if m := re.FindStringSubmatch(v.Raw); m != nil {
			for i, name := range re.SubexpNames() {
				if name == "micro" {
					if n, err := strconv.Atoi(m[i]); err == nil {
						micro = n + 1
					}
				}
			}
		}
	}

	return Version{Raw: renderCalver(format, today, micro), Kind: KindCalver}, nil
}

var trailingDigitsPattern = regexp.MustCompile(`\d+`)

// incrementRightmostNumber finds the rightmost run of digits in s and
// increments it by one, preserving the digit width when it does not grow
// (e.g. "09" -> "10", "99" -> "100").
func incrementRightmostNumber(s string) string {
	locs := trailingDigitsPattern.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	last := locs[len(locs)-1]
	digits := s[last[0]:last[1]]
	n, _ := strconv.Atoi(digits) //nolint:errcheck // digits is a regexp-verified numeral
	next := strconv.Itoa(n + 1)
	if len(next) < len(digits) {
		next = strings.Repeat("0", len(digits)-len(next)) + next
	}
	return s[:last[0]] + next + s[last[1]:]
}

// bumpTinyinc increments the rightmost \d+ run in v.Raw, failing if none
// exists.
func bumpTinyinc(v Version) (Version, error) {
	if !trailingDigitsPattern.MatchString(v.Raw) {
		return Version{}, &UnbumpableVersionError{Raw: v.Raw, Mode: ModeTinyinc, Reason: "no numeric segment found"}
	}
	return Version{Raw: incrementRightmostNumber(v.Raw), Kind: v.Kind}, nil
}
