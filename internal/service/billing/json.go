package billing

import (
	go_json "github.com/goccy/go-json"
)

type jsonKind uint8

const (
	kindAbsent jsonKind = iota
	kindNull
	kindString
	kindObject
	kindArray
	kindOther
)

// kindOf reports the JSON value kind of raw by its first significant byte.
func kindOf(raw go_json.RawMessage) jsonKind {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return kindString
		case '{':
			return kindObject
		case '[':
			return kindArray
		case 'n':
			return kindNull
		default:
			return kindOther
		}
	}
	return kindAbsent
}

type jsonObject map[string]go_json.RawMessage

func decodeObject(raw go_json.RawMessage) (jsonObject, bool) {
	if kindOf(raw) != kindObject {
		return nil, false
	}
	var obj jsonObject
	if err := go_json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// str returns the string value of key, or "" when absent or not a string.
func (o jsonObject) str(key string) string {
	raw, ok := o[key]
	if !ok || kindOf(raw) != kindString {
		return ""
	}
	var s string
	if err := go_json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (o jsonObject) object(key string) (jsonObject, bool) {
	raw, ok := o[key]
	if !ok {
		return nil, false
	}
	return decodeObject(raw)
}

// expandableID resolves a reference that is either a bare id string or an
// expanded object carrying an "id" field.
func (o jsonObject) expandableID(key string) string {
	raw, ok := o[key]
	if !ok {
		return ""
	}
	switch kindOf(raw) {
	case kindString:
		return o.str(key)
	case kindObject:
		expanded, ok := decodeObject(raw)
		if !ok {
			return ""
		}
		return expanded.str("id")
	default:
		return ""
	}
}
