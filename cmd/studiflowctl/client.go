package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

func get(apiURL, path string, out io.Writer) error {
	resp, err := http.Get(apiURL + path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}

func post(apiURL, path string, payload map[string]interface{}, out io.Writer) error {
	body, _ := json.Marshal(payload)
	resp, err := http.Post(apiURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}

func runState(apiURL string, out io.Writer) error {
	return get(apiURL, "/api/state", out)
}

func runSummary(apiURL string, out io.Writer) error {
	return get(apiURL, "/api/analytics/summary", out)
}

func runChat(apiURL string, args []string, out io.Writer) error {
	message := strings.Join(args, " ")
	if message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return post(apiURL, "/api/chat", map[string]interface{}{"message": message}, out)
}

func runLog(apiURL, typ, title, subjectID string, minutes int, out io.Writer) error {
	if minutes <= 0 {
		return fmt.Errorf("minutes must be positive")
	}
	payload := map[string]interface{}{
		"type":            typ,
		"durationMinutes": minutes,
	}
	if title != "" {
		payload["title"] = title
	}
	if subjectID != "" {
		payload["subjectId"] = subjectID
	}
	return post(apiURL, "/api/logs", payload, out)
}
