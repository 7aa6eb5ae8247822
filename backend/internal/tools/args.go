package tools

// Argument extraction helpers. Model-generated arguments arrive as
// map[string]interface{} decoded from JSON, so numbers are float64.

func argString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func argStringDefault(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func argInt(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}
