package export

import (
	"regexp"
	"strings"
)

// injectionPatterns are coarse markers of script or markup injection attempts
// in raw QR text. Matching input is rejected before any document is created.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)vbscript\s*:`),
	regexp.MustCompile(`(?i)on(?:error|load|click|mouseover)\s*=`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)<\s*iframe`),
}

// checkRawText runs the input-security scan. It returns a non-empty reason
// when the text must be rejected.
func checkRawText(rawText string) string {
	if strings.ContainsRune(rawText, 0) {
		return "input contains null bytes"
	}
	for _, re := range injectionPatterns {
		if re.MatchString(rawText) {
			return "input contains a disallowed script or markup pattern"
		}
	}
	return ""
}
