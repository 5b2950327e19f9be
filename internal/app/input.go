package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// flexBool decodes a JSON boolean that clients may also send as the
// strings "true"/"false".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("neither bool nor string: %s", data)
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("not a boolean: %q", s)
	}
	*b = flexBool(v)
	return nil
}

// True reports whether the flag was sent and set.
func (b *flexBool) True() bool {
	return b != nil && bool(*b)
}

// flexString decodes a JSON string that clients may also send as a bare
// number. Nonces in particular arrive both ways; the committed digest
// binds the decimal rendering.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err == nil {
		*s = flexString(v)
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if _, err := strconv.ParseFloat(string(trimmed), 64); err != nil {
		return fmt.Errorf("neither string nor number: %s", data)
	}
	*s = flexString(trimmed)
	return nil
}

// playerInput is the JSON body of a direct player message. Only Action
// is always required; the rest depends on the action and the duel state.
type playerInput struct {
	Action         string      `json:"action"`
	Bird           string      `json:"bird"`
	Opponent       string      `json:"opponent"`
	Commit         string      `json:"commit"`
	Trait          string      `json:"trait"`
	CompareGreater *flexBool   `json:"compare_greater"`
	Cancel         *flexBool   `json:"cancel"`
	Timeout        *flexBool   `json:"timeout"`
	Nonce          *flexString `json:"nonce"`
}

// birdwatchInput is the JSON body framed by a birdwatch action byte,
// forwarded by the asset contract on behalf of the observer.
type birdwatchInput struct {
	Y        float64 `json:"y"`
	X        float64 `json:"x"`
	Radius   float64 `json:"r"`
	Distance float64 `json:"d"`
	Timespan int64   `json:"t"`
	Account  string  `json:"a"`
}
