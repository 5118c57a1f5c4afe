package kernel

import (
	"io"
	"regexp"
	"strconv"
	"strings"
)

// FrameAssociations is the name/id/center table read from a frame kernel. It
// binds a named frame (e.g. ITRF93) to the frame-class id under which its
// orientation data is filed in a binary PCK.
type FrameAssociations struct {
	idsByName map[string]int
	centers   map[int]int
	classIDs  map[int]int
}

var (
	frameNameRe = regexp.MustCompile(`^FRAME_([A-Z0-9_]+)$`)
	frameAttrRe = regexp.MustCompile(`^FRAME_(\d+)_(CENTER|CLASS_ID|CLASS)$`)
)

// ParseFrameAssociations reads a frame kernel's FRAME_* assignments.
func ParseFrameAssociations(r io.Reader) (*FrameAssociations, error) {
	tk, err := ParseTextKernel(r)
	if err != nil {
		return nil, err
	}

	fa := &FrameAssociations{
		idsByName: make(map[string]int),
		centers:   make(map[int]int),
		classIDs:  make(map[int]int),
	}
	for _, name := range tk.Names() {
		if m := frameAttrRe.FindStringSubmatch(name); m != nil {
			id, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			val, err := tk.Float(name)
			if err != nil {
				continue
			}
			switch m[2] {
			case "CENTER":
				fa.centers[id] = int(val)
			case "CLASS_ID":
				fa.classIDs[id] = int(val)
			}
			continue
		}
		if m := frameNameRe.FindStringSubmatch(name); m != nil {
			val, err := tk.Float(name)
			if err != nil {
				continue
			}
			fa.idsByName[m[1]] = int(val)
		}
	}
	return fa, nil
}

// FrameID resolves a frame name to its numeric frame id.
func (f *FrameAssociations) FrameID(name string) (int, bool) {
	id, ok := f.idsByName[strings.ToUpper(name)]
	return id, ok
}

// Center returns the centre body id of a frame.
func (f *FrameAssociations) Center(frameID int) (int, bool) {
	c, ok := f.centers[frameID]
	return c, ok
}

// ClassID returns the frame-class id under which binary PCK segments for the
// frame are filed.
func (f *FrameAssociations) ClassID(frameID int) (int, bool) {
	c, ok := f.classIDs[frameID]
	return c, ok
}
