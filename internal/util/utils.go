package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetContextLines formats the reported line of src and up to two lines before it,
// marking the reported line with an arrow.
func GetContextLines(src string, errorLine int) string {
	var result bytes.Buffer

	lines := strings.Split(src, "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine; i++ {
		lineContent := strings.TrimRight(lines[i-1], "\r")
		if i == errorLine {
			result.WriteString(fmt.Sprintf("  >  %3d | %s\n", i, lineContent))
		} else {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
		}
	}

	return result.String()
}
