// Package compare implements the whitespace-tolerant output comparison
// used to discriminate Accepted from WrongAnswer for standard-judge
// test cases. There is no Presentation Error class: presentation
// differences count as wrong.
package compare

import "bytes"

// Verdict is the comparison outcome.
type Verdict int

const (
	Accepted Verdict = iota
	WrongAnswer
)

func (v Verdict) String() string {
	if v == Accepted {
		return "Accepted"
	}
	return "WrongAnswer"
}

// isBlankByte reports whether b is in the set of characters right-trimmed
// from every line before comparison, which is also the set that makes a
// line "blank" for skipping purposes.
func isBlankByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// splitLines splits buf into lines delimited by '\n', keeping the trailing
// partial line (if any) as its own entry, matching a simple walk over the
// buffer rather than strings.Split's empty-trailing-element quirk.
func splitLines(buf []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range buf {
		if b == '\n' {
			lines = append(lines, buf[start:i+1])
			start = i + 1
		}
	}
	if start < len(buf) {
		lines = append(lines, buf[start:])
	}
	return lines
}

func isBlankLine(line []byte) bool {
	for _, b := range line {
		if !isBlankByte(b) {
			return false
		}
	}
	return true
}

func rightTrim(line []byte) []byte {
	end := len(line)
	for end > 0 && isBlankByte(line[end-1]) {
		end--
	}
	return line[:end]
}

// nextNonBlank returns the next non-blank line at or after idx, and the
// index just past it, or (nil, len(lines)) if none remains.
func nextNonBlank(lines [][]byte, idx int) ([]byte, int) {
	for idx < len(lines) {
		if !isBlankLine(lines[idx]) {
			return lines[idx], idx + 1
		}
		idx++
	}
	return nil, idx
}

// Compare implements spec.md's OutputComparer algorithm: walk both
// buffers line by line, skipping blank lines on both sides, right-trim
// each non-blank line, and compare byte-equal. The first mismatch, or
// one side exhausting before the other, is WrongAnswer; both exhausting
// together is Accepted.
func Compare(out, ans []byte) Verdict {
	outLines := splitLines(out)
	ansLines := splitLines(ans)

	i, j := 0, 0
	for {
		var outLine, ansLine []byte
		outLine, i = nextNonBlank(outLines, i)
		ansLine, j = nextNonBlank(ansLines, j)

		outDone := outLine == nil
		ansDone := ansLine == nil

		if outDone && ansDone {
			return Accepted
		}
		if outDone != ansDone {
			return WrongAnswer
		}
		if !bytes.Equal(rightTrim(outLine), rightTrim(ansLine)) {
			return WrongAnswer
		}
	}
}
