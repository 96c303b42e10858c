package narrative

import (
	"errors"
	"regexp"
)

// ErrNoJSONBlock is returned when a completion carries no JSON object.
var ErrNoJSONBlock = errors.New("response contains no JSON object")

// jsonBlock spans from the first '{' to the last '}', which tolerates
// markdown fences and prose around the object.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON returns the embedded JSON object of a free-text completion.
func ExtractJSON(text string) (string, error) {
	block := jsonBlock.FindString(text)
	if block == "" {
		return "", ErrNoJSONBlock
	}
	return block, nil
}
