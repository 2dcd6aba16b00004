package enrich

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSON = errors.New("no JSON object in model reply")

// decodeReply pulls the first JSON object out of a model reply. Replies may
// wrap it in a ``` fence or surround it with prose.
func decodeReply(reply string, v any) error {
	body := strings.TrimSpace(reply)

	if start := strings.Index(body, "```"); start >= 0 {
		rest := body[start+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			body = strings.TrimSpace(rest[:end])
		}
	}

	open := strings.IndexByte(body, '{')
	closing := strings.LastIndexByte(body, '}')
	if open < 0 || closing < open {
		return errNoJSON
	}

	return json.Unmarshal([]byte(body[open:closing+1]), v)
}
