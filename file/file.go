package file

import (
	"path/filepath"
	"strconv"
	"strings"
)

// IDFromPath derives the numeric file identifier the operations file is
// keyed by: the filename stem with leading zeros stripped ("004.mid" ->
// "4"). Non-numeric stems have no identifier.
func IDFromPath(path string) (string, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	n, err := strconv.Atoi(strings.TrimSpace(stem))
	if err != nil || n < 0 {
		return "", false
	}
	return strconv.Itoa(n), true
}
