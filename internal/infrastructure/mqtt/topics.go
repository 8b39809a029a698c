package mqtt

import "strings"

// DefaultTopicPrefix roots every topic when none is configured.
const DefaultTopicPrefix = "fontsound"

// Topics builds fontsoundd topic names under one prefix.
//
//	topics := mqtt.NewTopics("fontsound")
//	topics.Event("synth0", "created")
//	// Returns: "fontsound/synth0/events/created"
type Topics struct {
	prefix string
}

// NewTopics returns builders rooted at prefix. Trailing slashes are
// trimmed and an empty prefix uses DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// SystemStatus is the retained online/offline topic.
func (t Topics) SystemStatus() string {
	return t.Prefix() + "/system/status"
}

// Event returns the topic for one kind of device event.
// Topic-level separators and wildcards in device are replaced with "_".
func (t Topics) Event(device, kind string) string {
	return t.Prefix() + "/" + sanitizeLevel(device) + "/events/" + sanitizeLevel(kind)
}

// AllEvents matches every event of every device.
func (t Topics) AllEvents() string {
	return t.Prefix() + "/+/events/#"
}

func sanitizeLevel(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#':
			return '_'
		default:
			return r
		}
	}, s)
}
