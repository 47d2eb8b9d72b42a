package common

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain", ` {"a":1} `, `{"a":1}`},
		{"no object", "hello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	if err := ParseJSON(`{"a":1}{"b":2}`, &v); err == nil {
		t.Fatal("expected error for trailing JSON data")
	}
	if err := ParseJSON(`{"a":1}`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuoteJSONKeys(t *testing.T) {
	got := QuoteJSONKeys(`{recipeName: "カレー", servings: 2}`)
	want := `{"recipeName": "カレー","servings": 2}`
	var a, b map[string]interface{}
	if err := ParseJSON(got, &a); err != nil {
		t.Fatalf("quoted output does not parse: %v (%s)", err, got)
	}
	if err := ParseJSON(want, &b); err != nil {
		t.Fatal(err)
	}
	if a["recipeName"] != b["recipeName"] {
		t.Errorf("expected recipeName %v, got %v", b["recipeName"], a["recipeName"])
	}
}
