package llm

import "strings"

const fence = "```"

// ExtractJSON isolates the JSON object in free-form model output.
//
// It trims the text, drops a leading and a trailing code fence line, and
// returns everything from the first '{' to the last '}' inclusive. When no
// such pair exists the trimmed text is returned unchanged so that the
// downstream parse fails explicitly. This is a heuristic: it assumes the
// only braces in the output belong to the single object that was asked for.
func ExtractJSON(raw string) string {
	t := stripCodeFences(raw)
	start := strings.IndexByte(t, '{')
	end := strings.LastIndexByte(t, '}')
	if start != -1 && end > start {
		return t[start : end+1]
	}
	return t
}

// HasJSONObject reports whether ExtractJSON would find a brace-delimited
// object in raw.
func HasJSONObject(raw string) bool {
	t := stripCodeFences(raw)
	start := strings.IndexByte(t, '{')
	return start != -1 && strings.LastIndexByte(t, '}') > start
}

func stripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, fence) {
		if i := strings.IndexByte(t, '\n'); i != -1 {
			t = t[i+1:]
		} else {
			t = ""
		}
	}
	if strings.HasSuffix(t, fence) {
		if i := strings.LastIndexByte(t, '\n'); i != -1 {
			t = t[:i]
		} else {
			t = ""
		}
	}
	return strings.TrimSpace(t)
}
