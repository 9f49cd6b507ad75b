package printer

import "os"

// hostname returns the local host name for hyperlink URIs, or "" if it
// cannot be determined; a missing host component is valid in a file: URI.
func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}
