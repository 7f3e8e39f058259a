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

import "errors"

// ErrIncomparableVersions is returned by Compare when either side is not a
// successfully parsed KindSemver Version.
var ErrIncomparableVersions = errors.New("incomparable versions")

// UnbumpableVersionError is returned by Bump when the requested strategy
// cannot act on the given Version: a semver bump on an unparseable raw, or
// a tinyinc bump on a string with no digit run.
type UnbumpableVersionError struct {
	Raw    string
	Mode   Mode
	Reason string
}

func (e *UnbumpableVersionError) Error() string {
	return "unbumpable version " + e.Raw + " under " + string(e.Mode) + " strategy: " + e.Reason
}
