package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status values of a single batch item.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result represents the result of a single operation in a batch
type Result struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray parses a required parameter given as a single string,
// a JSON array, or a string holding a JSON array. Empty items are rejected.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}
	items, err := parseItems(param, paramName)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	return items, nil
}

// ParseStringList is like ParseStringOrArray but accepts an empty list, and
// a plain string is split on commas. A nil param yields an empty list.
func ParseStringList(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return []string{}, nil
	}
	if s, ok := param.(string); ok && !looksLikeJSONArray(s) {
		out := make([]string, 0)
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return parseItems(param, paramName)
}

func parseItems(param interface{}, paramName string) ([]string, error) {
	switch v := param.(type) {
	case string:
		if looksLikeJSONArray(v) {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				return checkItems(arr, paramName)
			}
		}
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		return []string{v}, nil
	case []string:
		return checkItems(v, paramName)
	case []interface{}:
		result := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			result = append(result, str)
		}
		return checkItems(result, paramName)
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}
}

func checkItems(items []string, paramName string) ([]string, error) {
	for i, item := range items {
		if item == "" {
			return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
		}
	}
	return items, nil
}

func looksLikeJSONArray(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return string(jsonBytes)
}

// ProcessBatch runs fn on each id in order and collects the results. A
// failing item does not stop the batch.
func ProcessBatch[T any](ids []string, fn func(id string) (T, error)) []Result {
	results := make([]Result, 0, len(ids))

	for _, id := range ids {
		res, err := fn(id)
		if err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		results = append(results, NewSuccessResult(id, res))
	}

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id string, value interface{}) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: value,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
