package tasks

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// BuildArguments converts a typed argument struct into the generic map handlers receive
func BuildArguments(args interface{}) (map[string]interface{}, error) {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var mapArgs map[string]interface{}
	if err := json.Unmarshal(argsBytes, &mapArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into map: %w", err)
	}
	return mapArgs, nil
}

// uintArg reads a positive id from args, accepting JSON numbers, ints and numeric strings
func uintArg(args map[string]interface{}, key string) (uint, error) {
	switch v := args[key].(type) {
	case float64:
		if v > 0 && v == float64(uint(v)) {
			return uint(v), nil
		}
	case int:
		if v > 0 {
			return uint(v), nil
		}
	case uint:
		if v > 0 {
			return v, nil
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			return uint(n), nil
		}
	}
	return 0, fmt.Errorf("%s not provided or invalid", key)
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}
