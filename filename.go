// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

const (
	// AlwaysRejectRunes contains runes that are not safe to use with network shares.
	//
	// Please note that '/' is already discarded at an earlier stage.
	AlwaysRejectRunes = `"*:<>?|\`

	runeSpatium = '\u2009'

	// Replaces rejected runes in SanitizeFilename.
	runeReplacement = '_'

	// Used in place of names that have nothing left after sanitization.
	fallbackFilename = "file"

	errStrUnexpectedRange = "Unexpected Unicode range: "
)

// Happen when parsing ranges.
var (
	errOutOfBounds = errors.New("Value out of bounds")
)

// Not all runes in unicode.PrintRanges are suitable for filenames.
// They are collected here.
var excludedRunes = &unicode.RangeTable{
	R16: []unicode.Range16{
		{0x2028, 0x202f, 1}, // new line, paragraph etc.
		{0xfff0, 0xffff, 1}, // specials, and invalid (includes the obsolete (invalid) terminal boxes)
	},
	LatinOffset: 0,
}

// IsAcceptableFilename is used to enforce filenames in wanted alphabet(s).
// Setting 'reduceAcceptableRunesTo' reduces the supremum unicode.PrintRanges.
//
// A string with runes other than U+0020 (space) or U+2009 (spatium)
// representing space will be rejected.
//
// Filenames are not transliterated to prevent loops within clusters of mirrors.
func IsAcceptableFilename(s string, reduceAcceptableRunesTo []*unicode.RangeTable,
	enforceForm *norm.Form) bool {
	// most of the Internet is in NFC
	if enforceForm != nil && !enforceForm.IsNormalString(s) {
		return false
	}

	for _, r := range s {
		if reduceAcceptableRunesTo != nil && !unicode.In(r, reduceAcceptableRunesTo...) {
			return false
		}
		if !isAcceptableRune(r) {
			return false
		}
	}
	return true
}

func isAcceptableRune(r rune) bool {
	if uint32(r) <= unicode.MaxLatin1 && strings.ContainsRune(AlwaysRejectRunes, r) {
		return false
	}
	if r == runeSpatium {
		return true
	}
	// IsPrint takes care of the "spaces" as well
	return !unicode.Is(excludedRunes, r) && unicode.IsPrint(r)
}

// baseName strips anything up to the last slash or backslash.
//
// Browsers on some systems send full paths.
func baseName(name string) string {
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// SanitizeFilename turns what a client claims to be a filename
// into one that can be used in any directory.
//
// Directories are cut off, the result is in NFC, and runes
// IsAcceptableFilename would reject are replaced.
// Leading dots and spaces are removed, so the file will not be hidden.
func SanitizeFilename(name string) string {
	s := norm.NFC.String(baseName(name))
	s = strings.Map(func(r rune) rune {
		if isAcceptableRune(r) {
			return r
		}
		return runeReplacement
	}, s)
	s = strings.TrimLeft(s, ". \u2009")
	s = strings.TrimRight(s, " \u2009")
	if s == "" {
		return fallbackFilename
	}
	return s
}

type tupleForRangeSlice [][3]uint64

func (a tupleForRangeSlice) Len() int      { return len(a) }
func (a tupleForRangeSlice) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a tupleForRangeSlice) Less(i, j int) bool {
	for n := range a[i] {
		if a[i][n] != a[j][n] {
			return a[i][n] < a[j][n]
		}
	}
	return false
}

// rangeScanner reads tokens of a Unicode block list.
type rangeScanner struct {
	scanner.Scanner
}

func (s *rangeScanner) fail() error {
	return errors.New(errStrUnexpectedRange + s.Pos().String())
}

// bound parses the current token as hexadecimal code point, like "U+0041" or "x41".
func (s *rangeScanner) bound(tok rune) (uint64, error) {
	if tok != scanner.Ident {
		return 0, s.fail()
	}
	v, err := strconv.ParseUint(strings.TrimLeft(s.TokenText(), "uU+x"), 16, 32)
	if err != nil {
		return 0, s.fail()
	}
	return v, nil
}

// ParseUnicodeBlockList naïvely translates a string with space-delimited Unicode ranges to Go's unicode.RangeTable.
//
// All elements must fit into uint32.
// A Range must begin with its lower bound, and ranges must not overlap (we don't check this here!).
//
// The format of one range is as follows, with 'stride' being set to '1' if left empty.
//  <low>-<high>[:<stride>]
func ParseUnicodeBlockList(str string) (*unicode.RangeTable, error) {
	haveRanges := make(tupleForRangeSlice, 0, strings.Count(str, " ")+1)

	var s rangeScanner
	s.Init(strings.NewReader(str))
	tok := s.Scan()
	for tok != scanner.EOF {
		low, err := s.bound(tok)
		if err != nil {
			return nil, err
		}
		if tok = s.Scan(); !(tok == '-' || tok == '–') {
			return nil, s.fail()
		}
		high, err := s.bound(s.Scan())
		if err != nil {
			return nil, err
		}

		stride := uint64(1)
		if tok = s.Scan(); tok == ':' {
			if s.Scan() != scanner.Int {
				return nil, s.fail()
			}
			if stride, err = strconv.ParseUint(s.TokenText(), 10, 32); err != nil {
				return nil, s.fail()
			}
			tok = s.Scan()
		}
		haveRanges = append(haveRanges, [3]uint64{low, high, stride})
	}

	sort.Sort(haveRanges)
	return foldRanges(haveRanges)
}

func foldRanges(haveRanges tupleForRangeSlice) (*unicode.RangeTable, error) {
	rt := unicode.RangeTable{}
	for _, r := range haveRanges {
		switch {
		case r[1] <= unicode.MaxLatin1:
			rt.LatinOffset++
			fallthrough
		case r[1] <= math.MaxUint16:
			rt.R16 = append(rt.R16, unicode.Range16{Lo: uint16(r[0]), Hi: uint16(r[1]), Stride: uint16(r[2])})
		case r[1] <= math.MaxUint32:
			rt.R32 = append(rt.R32, unicode.Range32{Lo: uint32(r[0]), Hi: uint32(r[1]), Stride: uint32(r[2])})
		default:
			return nil, errOutOfBounds
		}
	}
	return &rt, nil
}
