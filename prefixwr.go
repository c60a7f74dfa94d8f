package srcset

import (
	"bytes"
	"io"
)

// lineTagger prefixes every line written to w with a tag. Tools running for
// different tasks of a build can be told apart this way.
type lineTagger struct {
	w     io.Writer
	tag   []byte
	mid   bool // within a line
	lines int
}

func tagLines(w io.Writer, tag string) *lineTagger {
	return &lineTagger{w: w, tag: []byte(tag)}
}

// Lines returns the number of lines started so far.
func (lt *lineTagger) Lines() int { return lt.lines }

func (lt *lineTagger) startLine() error {
	if lt.mid {
		return nil
	}
	lt.lines++
	lt.mid = true
	_, err := lt.w.Write(lt.tag)
	return err
}

func (lt *lineTagger) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		if err := lt.startLine(); err != nil {
			return n, err
		}
		end := bytes.IndexByte(p, '\n') + 1
		if end == 0 {
			m, err := lt.w.Write(p)
			return n + m, err
		}
		m, err := lt.w.Write(p[:end])
		n += m
		if err != nil {
			return n, err
		}
		lt.mid = false
		p = p[end:]
	}
	return n, nil
}

// Close terminates an unfinished last line. It does not close w.
func (lt *lineTagger) Close() error {
	if !lt.mid {
		return nil
	}
	lt.mid = false
	_, err := lt.w.Write([]byte{'\n'})
	return err
}
