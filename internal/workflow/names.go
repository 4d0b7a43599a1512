package workflow

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// executionNameDisallowed lists the characters stripped from execution
// names so they stay safe for logs, journal keys, and file paths.
const executionNameDisallowed = " <>{}[]?*\"#%\\^|~`$&,;:/"

// maxExecutionNameLength caps derived execution names.
const maxExecutionNameLength = 80

// DeriveExecutionName builds a unique execution name from the input object's
// filename and the start time.
func DeriveExecutionName(objectKey string, at time.Time) string {
	base := path.Base(objectKey)
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if !strings.ContainsRune(executionNameDisallowed, r) {
			b.WriteRune(r)
		}
	}
	name := b.String() + "_" + strconv.FormatInt(at.UTC().UnixNano(), 10)
	if len(name) > maxExecutionNameLength {
		name = name[:maxExecutionNameLength]
	}
	return name
}
