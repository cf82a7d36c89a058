package agent

import "strings"

// correctiveInstruction is sent as an extra user turn on every reflexion
// retry.
const correctiveInstruction = "Your previous answer did not use any tools and may be incomplete. " +
	"Search more thoroughly using the available tools, then answer again."

// minSatisfactoryReplyLen is the shortest reply length that can pass the
// satisfaction check. Legitimately short correct answers can misfire here;
// the heuristic is deliberately simple.
const minSatisfactoryReplyLen = 40

// lowConfidenceMarkers flag a reply as unsatisfactory when present as a
// case-insensitive substring.
var lowConfidenceMarkers = []string{
	"i don't know",
	"i do not know",
	"i'm not sure",
	"i am not sure",
	"i couldn't find",
	"i could not find",
	"cannot find",
	"can't find",
	"no information",
	"unable to find",
	"unable to determine",
	"not enough information",
	"i'm unable to",
}

// replyUnsatisfactory judges a reply: empty, too short, or carrying a
// low-confidence phrase.
func replyUnsatisfactory(reply string) bool {
	trimmed := strings.TrimSpace(reply)
	if len(trimmed) < minSatisfactoryReplyLen {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range lowConfidenceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// shouldRetry is the reflexion predicate: retry only when the attempt just
// completed had zero successful calls and an unsatisfactory reply.
func shouldRetry(res *attemptResult) bool {
	return res.successfulCalls == 0 && replyUnsatisfactory(res.reply)
}
