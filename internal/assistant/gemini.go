package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// GeminiConfig configures a Gemini delegate.
type GeminiConfig struct {
	Endpoint   string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

// Gemini is a Delegate backed by the Gemini generateContent REST API.
type Gemini struct {
	http     *http.Client
	endpoint string
	model    string
	apiKey   string
}

// NewGemini returns a Gemini delegate. An API key is required.
func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: no API key configured")
	}
	g := &Gemini{
		http:     cfg.HTTPClient,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
	}
	if g.http == nil {
		g.http = &http.Client{Timeout: 30 * time.Second}
	}
	if g.endpoint == "" {
		g.endpoint = DefaultGeminiEndpoint
	}
	if g.model == "" {
		g.model = DefaultGeminiModel
	}
	return g, nil
}

type part struct {
	Text         string        `json:"text,omitempty"`
	FunctionCall *functionCall `json:"functionCall,omitempty"`
}

type functionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

type functionDeclaration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  schema `json:"parameters"`
}

type tool struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction content   `json:"systemInstruction"`
	Tools             []tool    `json:"tools"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

var declarations = []functionDeclaration{
	{
		Name:        FuncCheckIn,
		Description: "Initiate the check-in process for the user.",
		Parameters: schema{
			Type: "OBJECT",
			Properties: map[string]schema{
				"locationType": {Type: "STRING", Description: "Type of location: Office, Home, Customer Site"},
			},
			Required: []string{"locationType"},
		},
	},
	{
		Name:        FuncCheckOut,
		Description: "Initiate the check-out process for the user.",
		Parameters: schema{
			Type: "OBJECT",
			Properties: map[string]schema{
				"notes": {Type: "STRING", Description: "Optional notes for checking out."},
			},
		},
	},
	{
		Name:        FuncGetStatus,
		Description: "Get the current attendance status summary.",
		Parameters:  schema{Type: "OBJECT"},
	},
}

// Send implements Delegate. Every failure wraps ErrUnavailable.
func (g *Gemini) Send(ctx context.Context, message string, history []Message) (Reply, error) {
	req := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: SystemInstruction}}},
		Tools:             []tool{{FunctionDeclarations: declarations}},
	}
	for _, m := range history {
		req.Contents = append(req.Contents, content{Role: string(m.Role), Parts: []part{{Text: m.Text}}})
	}
	req.Contents = append(req.Contents, content{Role: string(RoleUser), Parts: []part{{Text: message}}})

	body, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: encoding request: %v", ErrUnavailable, err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Reply{}, fmt.Errorf("%w: gemini returned %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Reply{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if len(out.Candidates) == 0 {
		return Reply{}, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	var reply Reply
	var texts []string
	for _, p := range out.Candidates[0].Content.Parts {
		if p.FunctionCall != nil && reply.Call == nil {
			reply.Call = &FunctionCall{Name: p.FunctionCall.Name, Args: stringArgs(p.FunctionCall.Args)}
		}
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	reply.Text = strings.TrimSpace(strings.Join(texts, ""))
	return reply, nil
}

func stringArgs(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch s := v.(type) {
		case string:
			out[k] = s
		case nil:
		default:
			out[k] = fmt.Sprint(s)
		}
	}
	return out
}
