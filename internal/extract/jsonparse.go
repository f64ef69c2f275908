package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Strategy identifies which recovery strategy turned model output into a
// valid [Record]. Anything other than [StrategyDirect] means the model
// violated the prompt's format contract and the output had to be repaired.
type Strategy string

const (
	// StrategyDirect means the output parsed as-is.
	StrategyDirect Strategy = "direct"

	// StrategyFenced means the JSON was pulled out of a markdown code block.
	StrategyFenced Strategy = "markdown_fence"

	// StrategyBraces means a balanced JSON object was carved out of
	// surrounding prose by brace matching.
	StrategyBraces Strategy = "brace_match"

	// StrategyRepair means the output only parsed after removing trailing
	// commas.
	StrategyRepair Strategy = "comma_repair"
)

var (
	fenceRE         = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")
	trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)
)

// parseRecord recovers a [Record] from raw model output, trying strategies
// from cheapest to most invasive:
//
//  1. direct parse of the whole output
//  2. extraction from a markdown code fence
//  3. balanced-brace matching from the first '{', with a trailing-comma
//     repair attempt on each balanced candidate
//  4. trailing-comma repair of the whole output
//
// The returned Strategy names whichever step succeeded.
func parseRecord(text string) (*Record, Strategy, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", errors.New("empty model output")
	}

	var rec Record
	if err := json.Unmarshal([]byte(text), &rec); err == nil {
		return &rec, StrategyDirect, nil
	}

	if m := fenceRE.FindStringSubmatch(text); m != nil {
		var fenced Record
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &fenced); err == nil {
			return &fenced, StrategyFenced, nil
		}
	}

	if rec, ok := braceMatch(text); ok {
		return rec, StrategyBraces, nil
	}

	fixed := trailingCommaRE.ReplaceAllString(text, "$1")
	var repaired Record
	if err := json.Unmarshal([]byte(fixed), &repaired); err == nil {
		return &repaired, StrategyRepair, nil
	}

	return nil, "", errors.New("no recovery strategy produced valid JSON")
}

// braceMatch scans from the first '{' and tries to parse every balanced
// object it closes, widening the candidate each time the depth returns to
// zero. This handles prose before and after the JSON object.
func braceMatch(text string) (*Record, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth != 0 {
				continue
			}
			candidate := text[start : i+1]

			var rec Record
			if err := json.Unmarshal([]byte(candidate), &rec); err == nil {
				return &rec, true
			}
			fixed := trailingCommaRE.ReplaceAllString(candidate, "$1")
			var repaired Record
			if err := json.Unmarshal([]byte(fixed), &repaired); err == nil {
				return &repaired, true
			}
		}
	}
	return nil, false
}
