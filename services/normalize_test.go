package services_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"devconnector/services"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "js, node , react", want: []string{"js", "node", "react"}},
		{in: "go", want: []string{"go"}},
		{in: "js,,node", want: []string{"js", "node"}},
		{in: " , ,", want: []string{}},
		{in: "", want: []string{}},
		{in: "c++,  c#,,rust ", want: []string{"c++", "c#", "rust"}},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := services.SplitSkills(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitSkills(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSkillsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr bool
	}{
		{name: "CommaString", body: `{"skills":"HTML, CSS ,JS"}`, want: []string{"HTML", "CSS", "JS"}},
		{name: "List", body: `{"skills":["go","sql"]}`, want: []string{"go", "sql"}},
		{name: "Number", body: `{"skills":42}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var in services.ProfileInput
			err := json.Unmarshal([]byte(tc.body), &in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual([]string(in.Skills), tc.want) {
				t.Fatalf("got %q want %q", in.Skills, tc.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: "example.com", want: "https://example.com"},
		{in: "http://example.com/", want: "https://example.com"},
		{in: "https://WWW.Example.com/me/", want: "https://example.com/me"},
		{in: "//cdn.example.com/x", want: "https://cdn.example.com/x"},
		{in: "http://example.com:80/a", want: "https://example.com/a"},
		{in: "https://example.com:8443/a?b=c", want: "https://example.com:8443/a?b=c"},
		{in: "ftp://example.com", wantErr: true},
		{in: "https://", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := services.NormalizeURL(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
