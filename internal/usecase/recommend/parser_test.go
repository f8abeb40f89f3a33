package recommend

import "testing"

func TestParseResponse_Plain(t *testing.T) {
	resp, err := parseResponse(`{"recommendations":[{"id":"7","reasoning":"fits"}],"summary":"One."}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].ID != "7" {
		t.Errorf("unexpected parse: %+v", resp)
	}
	if resp.Summary != "One." {
		t.Errorf("summary = %q", resp.Summary)
	}
}

func TestParseResponse_NumericID(t *testing.T) {
	resp, err := parseResponse(`{"recommendations":[{"id":42}],"summary":""}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Recommendations[0].ID != "42" {
		t.Errorf("id = %q, want 42", resp.Recommendations[0].ID)
	}
}

func TestParseResponse_Fenced(t *testing.T) {
	text := "```json\n{\"recommendations\":[{\"id\":\"1\"}],\"summary\":\"S\"}\n```\n"
	resp, err := parseResponse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendations) != 1 {
		t.Errorf("unexpected parse: %+v", resp)
	}
}

func TestParseResponse_BareFences(t *testing.T) {
	text := "```\n{\"recommendations\":[],\"summary\":\"S\"}\n```"
	resp, err := parseResponse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("expected empty recommendations, got %+v", resp.Recommendations)
	}
}

func TestParseResponse_NotJSON(t *testing.T) {
	if _, err := parseResponse("here you go!"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseResponse_MissingRecommendations(t *testing.T) {
	if _, err := parseResponse(`{"summary":"no picks"}`); err == nil {
		t.Fatal("expected error for missing recommendations array")
	}
}

func TestParseResponse_BadIDType(t *testing.T) {
	if _, err := parseResponse(`{"recommendations":[{"id":{"x":1}}]}`); err == nil {
		t.Fatal("expected error for object id")
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"42", "42"},
		{"42.0", "42"},
		{"7", "7"},
		{"007", "007"},
		{"007.0", "007"},
		{"SKU-99", "SKU-99"},
		{"v1.0", "v1.0"},
		{".0", ".0"},
		{"42.5", "42.5"},
	}
	for _, tc := range tests {
		if got := normalizeID(tc.in); got != tc.want {
			t.Errorf("normalizeID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeID_KeepsLongIDsDistinct(t *testing.T) {
	// Past float precision these differ only in the last digit.
	a := "99999999999999999998"
	b := "99999999999999999999"
	if normalizeID(a) == normalizeID(b) {
		t.Errorf("long numeric IDs collapsed: %q vs %q", a, b)
	}
}

func TestNormalizeID_LeadingZerosDistinct(t *testing.T) {
	if normalizeID("007") == normalizeID("7") {
		t.Error("leading zeros must not be stripped")
	}
}
