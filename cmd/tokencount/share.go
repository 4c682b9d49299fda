package main

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
)

const defaultBaseURL = "https://tokencount.eordano.com/"

// buildShareURL mirrors original_source/src/main.rs's build_share_url: a
// base64url-encoded JSON object appended to $TOKEN_COUNT_URL (or a built-in
// default), with no network call involved.
func buildShareURL(textA, textB, modelName string, countA, countB int) (string, error) {
	obj := map[string]any{"a": textA, "b": textB}
	if modelName != "claude" {
		obj["m"] = modelName
	}
	obj["t"] = map[string]any{"a": countA, "b": countB}

	body, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(body)
	encoded = strings.NewReplacer("+", "-", "/", "_").Replace(encoded)
	encoded = strings.TrimRight(encoded, "=")

	base := os.Getenv("TOKEN_COUNT_URL")
	if base == "" {
		base = defaultBaseURL
	}
	base = strings.TrimRight(base, "/")
	return base + "/?b=" + encoded, nil
}
