package batch

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    []string
		wantErr bool
	}{
		{name: "single string", input: "Alice", want: []string{"Alice"}},
		{name: "array of strings", input: []interface{}{"Alice", "Bob"}, want: []string{"Alice", "Bob"}},
		{name: "typed string slice", input: []string{"Alice"}, want: []string{"Alice"}},
		{name: "nil input", input: nil, wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "empty array", input: []interface{}{}, wantErr: true},
		{name: "array with non-string", input: []interface{}{"Alice", 123}, wantErr: true},
		{name: "array with empty string", input: []interface{}{"Alice", ""}, wantErr: true},
		{name: "invalid type", input: 123, wantErr: true},
		{name: "JSON string array", input: `["Alice", "Bob"]`, want: []string{"Alice", "Bob"}},
		{name: "JSON string empty array", input: `[]`, wantErr: true},
		{name: "invalid JSON string", input: `[invalid json`, want: []string{`[invalid json`}},
		{name: "string starting with bracket (not JSON)", input: `[team] Alice`, want: []string{`[team] Alice`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, "users")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStringOrArray() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStringOrArray() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStringList(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    []string
		wantErr bool
	}{
		{name: "nil is empty", input: nil, want: []string{}},
		{name: "empty string is empty", input: "", want: []string{}},
		{name: "empty array", input: []interface{}{}, want: []string{}},
		{name: "comma separated", input: "2024-01-10, 2024-01-11,", want: []string{"2024-01-10", "2024-01-11"}},
		{name: "array", input: []interface{}{"2024-01-10"}, want: []string{"2024-01-10"}},
		{name: "JSON string array", input: `["2024-01-10","2024-01-11"]`, want: []string{"2024-01-10", "2024-01-11"}},
		{name: "array with non-string", input: []interface{}{1}, wantErr: true},
		{name: "invalid type", input: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringList(tt.input, "dates")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStringList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStringList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult("Alice", []string{"2024-01-10"}),
		NewSuccessResult("Bob", []string{}),
		NewErrorResult("", errors.New("user name is required")),
	}

	output := FormatResults(results)

	var br BatchResult
	if err := json.Unmarshal([]byte(output), &br); err != nil {
		t.Fatalf("Failed to parse output JSON: %v", err)
	}

	if br.Total != 3 {
		t.Errorf("Total = %d, want 3", br.Total)
	}
	if br.Successful != 2 {
		t.Errorf("Successful = %d, want 2", br.Successful)
	}
	if br.Failed != 1 {
		t.Errorf("Failed = %d, want 1", br.Failed)
	}
}

func TestProcessBatch(t *testing.T) {
	ids := []string{"Alice", "Bob", "Carol"}

	results := ProcessBatch(ids, func(id string) (int, error) {
		if id == "Bob" {
			return 0, errors.New("failed to process Bob")
		}
		return len(id), nil
	})

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Status != StatusSuccess || results[0].Result != 5 {
		t.Errorf("results[0] = %+v, want success with 5", results[0])
	}
	if results[1].Status != StatusError || results[1].Error != "failed to process Bob" {
		t.Errorf("results[1] = %+v, want error", results[1])
	}
	if results[2].Status != StatusSuccess || results[2].Result != 5 {
		t.Errorf("results[2] = %+v, want success with 5", results[2])
	}
}
