package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/chainguard-dev/chainguard/internal/mcp"
)

func registerHTTP(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("http_login",
		"Log in to the project's configured web application, caching the authenticated session for subsequent http_test calls.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"base_url": {"type": "string"},
				"login_path": {"type": "string"},
				"credentials": {"type": "object", "additionalProperties": {"type": "string"}}
			},
			"required": ["base_url", "login_path", "credentials"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				BaseURL     string            `json:"base_url"`
				LoginPath   string            `json:"login_path"`
				Credentials map[string]string `json:"credentials"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a.workingDir)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			sess.State.HTTPBaseURL = a.BaseURL
			sess.State.HTTPCredentials = a.Credentials
			sess.State.Touch()

			session := d.HTTP.Ensure(sess.State.ProjectID, a.BaseURL)
			result, err := session.Login(ctx, a.LoginPath, a.Credentials)
			if err != nil {
				return errResult("login failed: %v", err)
			}

			if err := sess.Save(false); err != nil {
				return errResult("saving http config: %v", err)
			}
			return jsonResult(result)
		}))

	reg.Register(newTool("http_test",
		"Issue a request against an endpoint using the project's cached session and classify whether authentication is required.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"path": {"type": "string"},
				"method": {"type": "string"}
			},
			"required": ["path"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Path   string `json:"path"`
				Method string `json:"method"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a.workingDir)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			if sess.State.HTTPBaseURL == "" {
				return errResult("no base_url configured; call http_login first")
			}
			method := strings.ToUpper(a.Method)
			if method == "" {
				method = "GET"
			}

			session := d.HTTP.Ensure(sess.State.ProjectID, sess.State.HTTPBaseURL)
			result, err := session.TestEndpoint(ctx, method, a.Path, nil)
			if err != nil {
				return errResult("testing endpoint: %v", err)
			}

			if !result.AuthRequired {
				sess.State.HTTPTestsPerformed++
			}
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving http test count: %v", err)
			}

			return jsonResult(result)
		}))

	reg.Register(newTool("set_base_url",
		"Set the project's HTTP base URL for later http_test calls, without performing a login.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"base_url": {"type": "string"}
			},
			"required": ["base_url"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				BaseURL string `json:"base_url"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a.workingDir)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			sess.State.HTTPBaseURL = a.BaseURL
			sess.State.Touch()
			d.HTTP.Ensure(sess.State.ProjectID, a.BaseURL)
			if err := sess.Save(false); err != nil {
				return errResult("saving base url: %v", err)
			}
			return jsonResult(map[string]any{"base_url": a.BaseURL})
		}))

	reg.Register(newTool("clear_session",
		"Drop the project's cached HTTP session and stored credentials, forcing the next http_test to start unauthenticated.",
		`{"type": "object", "properties": {"working_dir": {"type": "string"}}}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			a, err := decodeArgs[workingDir](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			d.HTTP.Forget(sess.State.ProjectID)
			sess.State.HTTPCredentials = nil
			sess.State.HTTPBaseURL = ""
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("clearing session: %v", err)
			}
			return jsonResult(map[string]any{"cleared": true})
		}))

	reg.Register(newTool("ensure_session",
		"Verify the cached session is still authenticated, silently re-logging in with the stored credentials if it has expired.",
		`{"type": "object", "properties": {"working_dir": {"type": "string"}}}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			a, err := decodeArgs[workingDir](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			if sess.State.HTTPBaseURL == "" {
				return errResult("no base_url configured; call http_login first")
			}

			session := d.HTTP.Ensure(sess.State.ProjectID, sess.State.HTTPBaseURL)
			probe, err := session.TestEndpoint(ctx, "GET", "/", nil)
			if err != nil {
				return errResult("probing session: %v", err)
			}
			if !probe.AuthRequired {
				return jsonResult(map[string]any{"reauthenticated": false, "status": "active"})
			}

			loginPath, _ := sess.State.HTTPCredentials["login_path"]
			result, err := session.Login(ctx, loginPath, sess.State.HTTPCredentials)
			if err != nil {
				return errResult("re-login failed: %v", err)
			}
			return jsonResult(map[string]any{"reauthenticated": true, "login": result})
		}))
}
