// Package api calls the PuffBuddy HTTP API for puffctl.
package api

import (
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/puffbuddy/backend/internal/cli/client"
	"github.com/puffbuddy/backend/internal/cli/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const prefix = "/api/v1"

// do sends a request and decodes a successful JSON body into out
func do(method, path string, body, out interface{}) error {
	req := client.GetClient().R()
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	resp, err := req.Execute(method, prefix+path)
	if err := CheckResponse(resp, err); err != nil {
		logger.Debug("API call failed", "method", method, "path", path, "err", err)
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}

func escape(id string) string {
	return url.PathEscape(id)
}

// withLimit appends ?limit= when limit is positive
func withLimit(path string, limit int) string {
	if limit <= 0 {
		return path
	}
	return path + "?limit=" + strconv.Itoa(limit)
}
