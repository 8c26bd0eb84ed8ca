package domain

import "strings"

// QueryResponse is the raw body of POST /process/query.
// Sources is a comma-separated list and may be empty.
type QueryResponse struct {
	Answer  string `json:"answer"`
	Sources string `json:"sources"`
}

// AnswerResult is what the tool screen displays after a successful query.
type AnswerResult struct {
	Answer  string
	Sources []string
}

// ParseSources splits a comma-separated source list, trimming entries and
// dropping empty ones. Order is preserved.
func ParseSources(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewAnswerResult builds the displayed result from a query response. The
// submitted URLs stand in only when the sources field is empty; a field that
// holds nothing but separators yields an empty list.
func NewAnswerResult(resp QueryResponse, submitted []string) AnswerResult {
	answer := resp.Answer
	if answer == "" {
		answer = "No answer"
	}
	var sources []string
	if resp.Sources == "" {
		sources = append([]string(nil), submitted...)
	} else {
		sources = ParseSources(resp.Sources)
	}
	return AnswerResult{Answer: answer, Sources: sources}
}
