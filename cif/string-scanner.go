package cif

import (
	"fmt"
)

/*
A scanner to scan/parse ASCII strings representing lines in mmCIF files.

The zero StringScanner is valid and empty.
*/
type StringScanner struct {
	index int
	data  string
	err   error
}

/*
Returns the error that occurred during scanning/parsing.
*/
func (sc *StringScanner) Err() error {
	return sc.err
}

/*
Resets the scanner, and initializes it with the given string.
*/
func (sc *StringScanner) Reset(s string) {
	sc.index = 0
	sc.data = s
	sc.err = nil
}

/*
Returns the number of ASCII characters that still need to be
scanned/parsed. Returns 0 if Err() would return a non-nil value.
*/
func (sc *StringScanner) Len() int {
	if sc.err != nil {
		return 0
	}
	return len(sc.data) - sc.index
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

/*
Skips whitespace. Returns false when the rest of the line is blank or a
comment.
*/
func (sc *StringScanner) SkipSpace() bool {
	for ; sc.index < len(sc.data); sc.index++ {
		if !isSpace(sc.data[sc.index]) {
			return sc.data[sc.index] != '#'
		}
	}
	return false
}

/*
Scans the next whitespace-delimited or quoted value on the line. Quoted
values end at a closing quote that is followed by whitespace or the end
of the line.
*/
func (sc *StringScanner) ParseValue() (value string, ok bool) {
	if sc.err != nil || !sc.SkipSpace() {
		return "", false
	}
	if quote := sc.data[sc.index]; quote == '\'' || quote == '"' {
		start := sc.index + 1
		for end := start; end < len(sc.data); end++ {
			if sc.data[end] == quote && (end+1 == len(sc.data) || isSpace(sc.data[end+1])) {
				sc.index = end + 1
				return sc.data[start:end], true
			}
		}
		sc.err = fmt.Errorf("unterminated quoted value in %v", sc.data)
		return "", false
	}
	start := sc.index
	for ; sc.index < len(sc.data); sc.index++ {
		if isSpace(sc.data[sc.index]) {
			break
		}
	}
	return sc.data[start:sc.index], true
}
