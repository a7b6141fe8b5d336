package domain

import "encoding/json"

// StringLike models the document source's duck-typed text values, which
// arrive either as a plain string, as an object wrapping the text in a
// "qv" payload, or not at all. One shared Unwrap replaces the repeated
// three-way check at every extraction site.
type StringLike struct {
	kind  stringLikeKind
	value string
}

type stringLikeKind int

const (
	stringLikeAbsent stringLikeKind = iota
	stringLikePlain
	stringLikeWrapped
)

// PlainString builds a StringLike holding a plain string value.
func PlainString(s string) StringLike {
	return StringLike{kind: stringLikePlain, value: s}
}

// WrappedValue builds a StringLike holding a qv-wrapped value.
func WrappedValue(qv string) StringLike {
	return StringLike{kind: stringLikeWrapped, value: qv}
}

// Absent is the zero StringLike: no value present.
var Absent = StringLike{}

// Unwrap returns the carried string and true when a value is present.
// Wrapped and plain values unwrap identically.
func (s StringLike) Unwrap() (string, bool) {
	if s.kind == stringLikeAbsent {
		return "", false
	}
	return s.value, true
}

// OrEmpty returns the carried string, or "" when absent.
func (s StringLike) OrEmpty() string {
	v, _ := s.Unwrap()
	return v
}

// IsPresent reports whether a value is carried.
func (s StringLike) IsPresent() bool {
	return s.kind != stringLikeAbsent
}

// UnmarshalJSON accepts a JSON string, an object with a string "qv"
// field, or anything else (which yields Absent rather than an error:
// extraction is total and degrades to empty on unexpected shapes).
func (s *StringLike) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Absent
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = PlainString(str)
		return nil
	}

	var wrapped struct {
		QV *string `json:"qv"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.QV != nil {
		*s = WrappedValue(*wrapped.QV)
		return nil
	}

	*s = Absent
	return nil
}

// MarshalJSON writes the plain string for present values and null otherwise.
func (s StringLike) MarshalJSON() ([]byte, error) {
	if v, ok := s.Unwrap(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}

// UnwrapStrings filters a StringLike list down to its present values.
func UnwrapStrings(list []StringLike) []string {
	var out []string
	for _, s := range list {
		if v, ok := s.Unwrap(); ok && v != "" {
			out = append(out, v)
		}
	}
	return out
}
