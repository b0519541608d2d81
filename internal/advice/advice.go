// Package advice provides the hive-mind consultation calls: opaque prose
// analysis of a single ticket or a whole project's progress. The prompts
// and the generateContent wire format are the whole of this module's
// knowledge; callers only see prose in and prose out.
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jvasco/tix/internal/domain"
)

// ErrNoAPIKey indicates consultation is unconfigured.
var ErrNoAPIKey = errors.New("neural link severed: API key missing")

// DefaultBaseURL is the generative language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

const model = "gemini-2.5-flash-latest"

// Consultant issues consultation requests. The zero value is unusable;
// construct with New.
type Consultant struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a consultant. An empty baseURL selects the default endpoint.
func New(baseURL, apiKey string) *Consultant {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Consultant{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// ConsultTicket asks for strategic advice on a single work unit.
func (c *Consultant) ConsultTicket(ctx context.Context, t domain.Ticket, epicName string) (string, error) {
	if epicName == "" {
		epicName = "None"
	}
	prompt := fmt.Sprintf(`Role: You are the "Mother", a cold, efficient, biomechanical alien hive-mind AI.
Task: Analyze this work unit (ticket).

Data:
- Unit ID: %q
- Description: %q
- Impact Level: %q
- Complexity (Effort): %d
- Protocol Layer (Epic): %q

Output:
1. Provide a cryptic but highly efficient strategic advice on how to complete this task.
2. Suggest 3 concrete sub-tasks.

Tone: Superior, organic-synthetic, ominous but helpful. Keep it concise.`,
		t.Title, t.Description, string(t.Impact), t.Effort, epicName)

	return c.generate(ctx, prompt)
}

// ConsultProject asks for a judgment of the project's overall progress,
// summarized as per-status counts and effort totals.
func (c *Consultant) ConsultProject(ctx context.Context, p domain.Project) (string, error) {
	var todo, active, done, totalEffort, doneEffort int
	for _, t := range p.Tickets {
		totalEffort += t.Effort
		switch t.Status {
		case domain.StatusTodo:
			todo++
		case domain.StatusInProgress:
			active++
		case domain.StatusDone:
			done++
			doneEffort += t.Effort
		}
	}

	prompt := fmt.Sprintf(`Role: You are the "Mother", an alien hive-mind AI overseer.
Task: Judge the progress of the current project sector.
Project Name: %q
Stats:
- Pending Units: %d
- Active Units: %d
- Completed Units: %d
- Biomass Processed (Effort): %d / %d

Output: A single paragraph judgment of the hive's efficiency. Be critical if progress is slow. Be approving if efficiency is high. Use biomechanical metaphors.`,
		p.Name, todo, active, done, doneEffort, totalEffort)

	return c.generate(ctx, prompt)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Consultant) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode consult request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build consult request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("consult: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return "", fmt.Errorf("consult: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode consult response: %w", err)
	}

	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", errors.New("consult: empty response")
}
