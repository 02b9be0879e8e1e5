package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FlexString decodes a JSON string or number into a string. Hand-authored
// proof files write chapter and numbering as bare numbers; the pipeline
// passes them through untouched.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("tag value is neither string nor number: %w", err)
	}
	// Render integral floats without the trailing ".0" authors never intend.
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	if v, err := n.Float64(); err == nil && v == float64(int64(v)) {
		*f = FlexString(strconv.FormatInt(int64(v), 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Tags is the normalized taxonomy metadata attached to proofs and
// definitions: subject areas, a chapter, and a numbering label.
type Tags struct {
	Subjects []string   `json:"subjects,omitempty"`
	Chapter  FlexString `json:"chapter,omitempty"`
	Number   FlexString `json:"number,omitempty"`
}

// IsZero reports whether no taxonomy metadata is present.
func (t Tags) IsZero() bool {
	return len(t.Subjects) == 0 && t.Chapter == "" && t.Number == ""
}

// Chips returns the display chips for the tag set, deduplicated and in a
// stable order: numbering first, then chapter, then subjects.
func (t Tags) Chips() []string {
	var chips []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		chips = append(chips, s)
	}
	add(t.Number.String())
	if c := t.Chapter.String(); c != "" {
		add("Ch. " + c)
	}
	for _, s := range t.Subjects {
		add(s)
	}
	return chips
}
