package chemical

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestValueOf_Shapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want PropertyValue
	}{
		{"string", `"Flammable"`, Scalar("Flammable")},
		{"number", `3`, Scalar("3")},
		{"bool", `true`, Scalar("true")},
		{"reference", `{"@id":"id#Acetone"}`, Reference{ID: "id#Acetone"}},
		{"literal", `{"@value":"Stable"}`, Literal{Value: "Stable"}},
		{"numeric literal", `{"@value":2}`, Literal{Value: "2"}},
		{"plain value", `{"value":"Stable"}`, Literal{Value: "Stable"}},
		{"label", `{"label":"Water"}`, LabelObject{Label: Scalar("Water")}},
		{"rdfs label literal", `{"rdfs:label":{"@value":"Water"}}`, LabelObject{Label: Literal{Value: "Water"}}},
		{"label list", `{"label":["A","B"]}`, LabelObject{Label: List{Scalar("A"), Scalar("B")}}},
		{"list", `["a",{"@id":"id#B"}]`, List{Scalar("a"), Reference{ID: "id#B"}}},
		{"id wins over label", `{"@id":"id#X","label":"Y"}`, Reference{ID: "id#X"}},
		{"blank id falls through", `{"@id":"  ","@value":"V"}`, Literal{Value: "V"}},
		{"unknown object", `{"foo":"bar"}`, nil},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueOf(decode(t, tt.raw)))
		})
	}
}

func TestValueOf_GoValues(t *testing.T) {
	assert.Equal(t, Scalar("1.5"), ValueOf(1.5))
	assert.Equal(t, Scalar("7"), ValueOf(7))
	assert.Equal(t, Scalar("7"), ValueOf(int64(7)))
	assert.Equal(t, List{Scalar("a"), Scalar("b")}, ValueOf([]string{"a", "b"}))
	assert.Equal(t, Scalar("x"), ValueOf(Scalar("x")))
	assert.Equal(t, Reference{ID: "id#N"}, ValueOf(GraphNode{"@id": "id#N"}))
}

func TestPropertyValue_MarshalJSON(t *testing.T) {
	v := List{
		Scalar("a"),
		Reference{ID: "id#B"},
		Literal{Value: "c"},
		LabelObject{Label: Scalar("d")},
	}
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `["a",{"@id":"id#B"},{"@value":"c"},{"label":"d"}]`, string(out))
}
