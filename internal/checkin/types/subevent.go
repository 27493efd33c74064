package types

import "strings"

// Subevent is one of the fixed activities an attendee can be scanned into.
type Subevent string

const (
	SubeventMain       Subevent = "main"
	SubeventCharlaA    Subevent = "charla-a"
	SubeventTallerB    Subevent = "taller-b"
	SubeventNetworking Subevent = "networking"
	SubeventDemoX      Subevent = "demo-x"
)

// Subevents lists every known sub-event in display order.
var Subevents = []Subevent{
	SubeventMain,
	SubeventCharlaA,
	SubeventTallerB,
	SubeventNetworking,
	SubeventDemoX,
}

var subeventLabels = map[Subevent]string{
	SubeventMain:       "Main Check",
	SubeventCharlaA:    "Charla A",
	SubeventTallerB:    "Taller B",
	SubeventNetworking: "Networking",
	SubeventDemoX:      "Demo X",
}

// ParseSubevent normalizes s and reports whether it names a known sub-event.
// An empty string resolves to SubeventMain.
func ParseSubevent(s string) (Subevent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SubeventMain, true
	}
	se := Subevent(s)
	return se, se.Valid()
}

func (s Subevent) Valid() bool {
	_, ok := subeventLabels[s]
	return ok
}

// Label is the human readable name. Unknown keys are returned verbatim.
func (s Subevent) Label() string {
	if l, ok := subeventLabels[s]; ok {
		return l
	}
	return string(s)
}

type SubeventInfo struct {
	Key   Subevent `json:"key"`
	Label string   `json:"label"`
}

func SubeventInfos() []SubeventInfo {
	out := make([]SubeventInfo, 0, len(Subevents))
	for _, s := range Subevents {
		out = append(out, SubeventInfo{Key: s, Label: s.Label()})
	}
	return out
}
