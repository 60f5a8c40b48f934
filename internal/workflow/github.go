package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"BetPilot/internal/model"
)

// Manager disables and re-enables the GitHub Actions workflow that schedules
// the bot. Both calls are idempotent on the GitHub side: disabling an already
// disabled workflow succeeds with no effect.
type Manager struct {
	Token        string
	Repository   string
	WorkflowFile string
	BaseURL      string
	Client       *http.Client
}

// NewManager creates a workflow manager with optional proxy support.
func NewManager(token, repository, workflowFile, proxyURL string) *Manager {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Manager{
		Token:        token,
		Repository:   repository,
		WorkflowFile: workflowFile,
		BaseURL:      "https://api.github.com",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Disable turns off the scheduled workflow so no further runs trigger.
func (m *Manager) Disable(ctx context.Context) error {
	if err := m.setState(ctx, "disable"); err != nil {
		return &model.DisableError{Err: err}
	}
	log.Printf("[INFO] workflow %s disabled", m.WorkflowFile)
	return nil
}

// Enable re-activates the scheduled workflow. Operator-invoked out of band.
func (m *Manager) Enable(ctx context.Context) error {
	if err := m.setState(ctx, "enable"); err != nil {
		return fmt.Errorf("enable workflow: %w", err)
	}
	log.Printf("[INFO] workflow %s enabled", m.WorkflowFile)
	return nil
}

func (m *Manager) setState(ctx context.Context, action string) error {
	id, err := m.findWorkflowID(ctx)
	if err != nil {
		return err
	}

	apiURL := fmt.Sprintf("%s/repos/%s/actions/workflows/%d/%s", m.BaseURL, m.Repository, id, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", action, err)
	}
	m.authorize(req)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s workflow: %w", action, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (m *Manager) findWorkflowID(ctx context.Context) (int64, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/actions/workflows", m.BaseURL, m.Repository)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create list request: %w", err)
	}
	m.authorize(req)

	resp, err := m.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("list workflows: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Workflows []struct {
			ID   int64  `json:"id"`
			Path string `json:"path"`
		} `json:"workflows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode workflows: %w", err)
	}

	want := ".github/workflows/" + m.WorkflowFile
	for _, w := range result.Workflows {
		if w.Path == want {
			return w.ID, nil
		}
	}
	return 0, fmt.Errorf("workflow %s not found in %s", m.WorkflowFile, m.Repository)
}

func (m *Manager) authorize(req *http.Request) {
	req.Header.Set("Authorization", "token "+m.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
