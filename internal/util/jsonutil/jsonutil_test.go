package jsonutil

import (
	"testing"
)

func TestExtractObject_PlainObject(t *testing.T) {
	got := ExtractObject(`{"a":1}`)
	if got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractObject_ObjectInsideProse(t *testing.T) {
	text := "Sure! Here you go:\n```json\n{\"files\":[{\"path\":\"a\",\"content\":\"b\"}]}\n```\nDone."
	got := ExtractObject(text)
	if got != `{"files":[{"path":"a","content":"b"}]}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractObject_BracesInsideStrings(t *testing.T) {
	text := `prefix {"code":"if (x) { return {}; }"} suffix`
	got := ExtractObject(text)
	if got != `{"code":"if (x) { return {}; }"}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractObject_EscapedQuotes(t *testing.T) {
	text := `{"s":"she said \"}\" loudly"}`
	if got := ExtractObject(text); got != text {
		t.Fatalf("got %q", got)
	}
}

func TestExtractObject_NoObject(t *testing.T) {
	if got := ExtractObject("nothing here"); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractObject("unbalanced { forever"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestUnmarshalFlex_Direct(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	if err := UnmarshalFlex([]byte(`{"a":3}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.A != 3 {
		t.Fatalf("got %d", v.A)
	}
}

func TestUnmarshalFlex_QuotedPayload(t *testing.T) {
	// Whole object delivered as a JSON string.
	raw := []byte(`"{\"a\":7}"`)
	var v struct {
		A int `json:"a"`
	}
	if err := UnmarshalFlex(raw, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.A != 7 {
		t.Fatalf("got %d", v.A)
	}
}

func TestUnescapeUnicodeString(t *testing.T) {
	got, err := UnescapeUnicodeString(`a \u003e b`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a > b" {
		t.Fatalf("got %q", got)
	}

	// No escapes: untouched, including backslashes.
	got, err = UnescapeUnicodeString(`C:\temp\file`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `C:\temp\file` {
		t.Fatalf("got %q", got)
	}

	// A "\u" that is not a valid escape errors instead of mangling.
	if _, err := UnescapeUnicodeString(`C:\users\x`); err == nil {
		t.Fatal("expected error for invalid escape")
	}
}

func TestNormalizeJSONUnicode_DoubleEscaped(t *testing.T) {
	raw := []byte(`{"s":"a \\u003e b"}`)
	norm, err := NormalizeJSONUnicode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var v struct {
		S string `json:"s"`
	}
	if err := UnmarshalFlex(norm, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.S != "a > b" {
		t.Fatalf("got %q", v.S)
	}
}

func TestMarshalNoEscape(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"s": "<b>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"s":"<b>"}` {
		t.Fatalf("got %s", out)
	}
}
