package mcp

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]interface{}
}

// bindArguments binds MCP request arguments to a target struct with type
// coercion. Some clients send every parameter as a string, including booleans,
// numbers and JSON-encoded arrays. Embedded structs are flattened.
func bindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

// jsonStringHook decodes string arguments that carry JSON for non-string targets.
func jsonStringHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch {
	case t.Kind() == reflect.Slice && strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		slicePtr := reflect.New(t)
		if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err == nil {
			return slicePtr.Elem().Interface(), nil
		}
	case (t.Kind() == reflect.Map || t.Kind() == reflect.Struct) && strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		var result interface{}
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			return result, nil
		}
	case t.Kind() == reflect.Bool && (raw == "true" || raw == "false"):
		return raw == "true", nil
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
		var result json.Number
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			return result, nil
		}
	}
	return data, nil
}
