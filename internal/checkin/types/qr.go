package types

import "strings"

// ExtractID returns the attendee id carried by a decoded QR payload: the
// segment after the last '/', or the whole payload when it has none.
func ExtractID(payload string) string {
	if i := strings.LastIndex(payload, "/"); i >= 0 {
		return payload[i+1:]
	}
	return payload
}
