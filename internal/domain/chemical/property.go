package chemical

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PropertyValue is a closed union over the shapes a graph property can take:
// Scalar, Reference, Literal, LabelObject and List. A nil PropertyValue means
// the raw value had no recognisable shape.
type PropertyValue interface {
	isPropertyValue()
}

// Scalar is a bare string value.
type Scalar string

// Reference is an {"@id": ...} link to another node.
type Reference struct {
	ID string
}

// Literal is an {"@value": ...} or {"value": ...} object.
type Literal struct {
	Value string
}

// LabelObject is an object whose only usable content is an RDFS label,
// which may itself be a string, a literal or a list.
type LabelObject struct {
	Label PropertyValue
}

// List is a multi-valued property.
type List []PropertyValue

func (Scalar) isPropertyValue()      {}
func (Reference) isPropertyValue()   {}
func (Literal) isPropertyValue()     {}
func (LabelObject) isPropertyValue() {}
func (List) isPropertyValue()        {}

func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{KeywordID: r.ID})
}

func (l Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{KeywordValue: l.Value})
}

func (l LabelObject) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]PropertyValue{"label": l.Label})
}

// ValueOf converts a decoded JSON value (as produced by encoding/json into
// interface{}, with or without UseNumber) into a PropertyValue. Objects are
// classified by the first non-blank key among "@id", "@value", "value" and
// the label keys. Unrecognised shapes yield nil.
func ValueOf(raw interface{}) PropertyValue {
	switch v := raw.(type) {
	case nil:
		return nil
	case PropertyValue:
		return v
	case string:
		return Scalar(v)
	case json.Number:
		return Scalar(v.String())
	case float64:
		return Scalar(strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return Scalar(strconv.Itoa(v))
	case int64:
		return Scalar(strconv.FormatInt(v, 10))
	case bool:
		return Scalar(strconv.FormatBool(v))
	case []interface{}:
		list := make(List, 0, len(v))
		for _, item := range v {
			list = append(list, ValueOf(item))
		}
		return list
	case []string:
		list := make(List, 0, len(v))
		for _, item := range v {
			list = append(list, Scalar(item))
		}
		return list
	case map[string]interface{}:
		return objectValue(v)
	case GraphNode:
		return objectValue(v)
	default:
		return Scalar(fmt.Sprint(v))
	}
}

func objectValue(obj map[string]interface{}) PropertyValue {
	if id := scalarString(obj[KeywordID]); id != "" {
		return Reference{ID: id}
	}
	if val := scalarString(obj[KeywordValue]); val != "" {
		return Literal{Value: val}
	}
	if val := scalarString(obj["value"]); val != "" {
		return Literal{Value: val}
	}
	for _, k := range labelKeys {
		if label, ok := obj[k]; ok && label != nil {
			return LabelObject{Label: ValueOf(label)}
		}
	}
	return nil
}

// scalarString returns the string form of a JSON primitive, or "" for
// anything else.
func scalarString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
