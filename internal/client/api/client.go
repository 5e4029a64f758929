package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chesslines/internal/client/display"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: io.Discard,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

// SetOutput sets where request traces are written
func (c *Client) SetOutput(w io.Writer) {
	c.Out = w
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	fmt.Fprintf(c.Out, "%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if bodyStr != "" && c.Verbose {
		fmt.Fprintf(c.Out, "%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, display.Indent([]byte(bodyStr)))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
	if c.Verbose && len(respBody) > 0 {
		fmt.Fprintf(c.Out, "%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, display.Indent(respBody))
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Code != "" {
			return &Error{Status: resp.StatusCode, Response: errResp}
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// Error is a structured error returned by the server
type Error struct {
	Status   int
	Response ErrorResponse
}

func (e *Error) Error() string {
	if e.Response.Details != "" {
		return fmt.Sprintf("%s (%s): %s", e.Response.Error, e.Response.Code, e.Response.Details)
	}
	return fmt.Sprintf("%s (%s)", e.Response.Error, e.Response.Code)
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) ListLines(filter string) (*LineListResponse, error) {
	path := "/api/v1/lines"
	if filter != "" {
		path += "?q=" + url.QueryEscape(filter)
	}
	var resp LineListResponse
	err := c.doRequest("GET", path, nil, &resp)
	return &resp, err
}

func (c *Client) CreateLine(req *CreateLineRequest) (*LineResponse, error) {
	var resp LineResponse
	err := c.doRequest("POST", "/api/v1/lines", req, &resp)
	return &resp, err
}

func (c *Client) GetLine(lineID string) (*LineResponse, error) {
	var resp LineResponse
	err := c.doRequest("GET", "/api/v1/lines/"+lineID, nil, &resp)
	return &resp, err
}

func (c *Client) UpdateLine(lineID string, req *UpdateLineRequest) (*LineResponse, error) {
	var resp LineResponse
	err := c.doRequest("PUT", "/api/v1/lines/"+lineID, req, &resp)
	return &resp, err
}

func (c *Client) DeleteLine(lineID string) error {
	return c.doRequest("DELETE", "/api/v1/lines/"+lineID, nil, nil)
}

func (c *Client) GetLineTree(lineID string) (*TreeResponse, error) {
	var resp TreeResponse
	err := c.doRequest("GET", "/api/v1/lines/"+lineID+"/tree", nil, &resp)
	return &resp, err
}

func (c *Client) OpenRecording(lineID string) (*TreeResponse, error) {
	var resp TreeResponse
	err := c.doRequest("POST", "/api/v1/lines/"+lineID+"/recordings", nil, &resp)
	return &resp, err
}

func (c *Client) GetRecording(sessionID string) (*TreeResponse, error) {
	var resp TreeResponse
	err := c.doRequest("GET", "/api/v1/recordings/"+sessionID, nil, &resp)
	return &resp, err
}

func (c *Client) RecordMove(sessionID, move string) (*TreeResponse, error) {
	var resp TreeResponse
	err := c.doRequest("POST", "/api/v1/recordings/"+sessionID+"/moves", &MoveRequest{Move: move}, &resp)
	return &resp, err
}

func (c *Client) Navigate(sessionID, nodeID string) (*TreeResponse, error) {
	var resp TreeResponse
	err := c.doRequest("PUT", "/api/v1/recordings/"+sessionID+"/cursor", &NavigateRequest{NodeID: nodeID}, &resp)
	return &resp, err
}

func (c *Client) Annotate(sessionID string, req *AnnotateRequest) (*TreeResponse, error) {
	var resp TreeResponse
	err := c.doRequest("PUT", "/api/v1/recordings/"+sessionID+"/annotations", req, &resp)
	return &resp, err
}

func (c *Client) SaveRecording(sessionID string) (*LineResponse, error) {
	var resp LineResponse
	err := c.doRequest("POST", "/api/v1/recordings/"+sessionID+"/save", nil, &resp)
	return &resp, err
}

func (c *Client) CloseRecording(sessionID string) error {
	return c.doRequest("DELETE", "/api/v1/recordings/"+sessionID, nil, nil)
}

func (c *Client) RecordingBoard(sessionID string) (*BoardResponse, error) {
	var resp BoardResponse
	err := c.doRequest("GET", "/api/v1/recordings/"+sessionID+"/board", nil, &resp)
	return &resp, err
}

func (c *Client) StartPractice(lineID, color string) (*PracticeResponse, error) {
	var resp PracticeResponse
	err := c.doRequest("POST", "/api/v1/lines/"+lineID+"/practice", &PracticeRequest{Color: color}, &resp)
	return &resp, err
}

func (c *Client) GetPractice(sessionID string) (*PracticeResponse, error) {
	var resp PracticeResponse
	err := c.doRequest("GET", "/api/v1/practice/"+sessionID, nil, &resp)
	return &resp, err
}

func (c *Client) PracticeMove(sessionID, move string) (*PracticeResponse, error) {
	var resp PracticeResponse
	err := c.doRequest("POST", "/api/v1/practice/"+sessionID+"/moves", &MoveRequest{Move: move}, &resp)
	return &resp, err
}

func (c *Client) PracticeHint(sessionID string) (*PracticeResponse, error) {
	var resp PracticeResponse
	err := c.doRequest("POST", "/api/v1/practice/"+sessionID+"/hint", nil, &resp)
	return &resp, err
}

func (c *Client) PracticeSkip(sessionID string) (*PracticeResponse, error) {
	var resp PracticeResponse
	err := c.doRequest("POST", "/api/v1/practice/"+sessionID+"/skip", nil, &resp)
	return &resp, err
}

func (c *Client) PracticeBoard(sessionID string) (*BoardResponse, error) {
	var resp BoardResponse
	err := c.doRequest("GET", "/api/v1/practice/"+sessionID+"/board", nil, &resp)
	return &resp, err
}

func (c *Client) ClosePractice(sessionID string) error {
	return c.doRequest("DELETE", "/api/v1/practice/"+sessionID, nil, nil)
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			bodyData = body
		}
	}

	var result json.RawMessage
	if err := c.doRequest(method, path, bodyData, &result); err != nil {
		return err
	}
	if len(result) > 0 {
		fmt.Fprintln(c.Out, display.Indent(result))
	}
	return nil
}

// ListClassrooms lists classrooms; visibility "" means all of them
func (c *Client) ListClassrooms(visibility string) (*ClassroomListResponse, error) {
	path := "/api/v1/classrooms"
	if visibility != "" {
		path += "?visibility=" + url.QueryEscape(visibility)
	}
	var resp ClassroomListResponse
	err := c.doRequest("GET", path, nil, &resp)
	return &resp, err
}

func (c *Client) CreateClassroom(req *CreateClassroomRequest) (*ClassroomResponse, error) {
	var resp ClassroomResponse
	err := c.doRequest("POST", "/api/v1/classrooms", req, &resp)
	return &resp, err
}

func (c *Client) GetClassroom(classroomID string) (*ClassroomResponse, error) {
	var resp ClassroomResponse
	err := c.doRequest("GET", "/api/v1/classrooms/"+classroomID, nil, &resp)
	return &resp, err
}

func (c *Client) UpdateClassroom(classroomID string, req *UpdateClassroomRequest) (*ClassroomResponse, error) {
	var resp ClassroomResponse
	err := c.doRequest("PUT", "/api/v1/classrooms/"+classroomID, req, &resp)
	return &resp, err
}

func (c *Client) DeleteClassroom(classroomID string) error {
	return c.doRequest("DELETE", "/api/v1/classrooms/"+classroomID, nil, nil)
}

func (c *Client) CreateClassroomLine(classroomID string, req *CreateLineRequest) (*LineResponse, error) {
	var resp LineResponse
	err := c.doRequest("POST", "/api/v1/classrooms/"+classroomID+"/lines", req, &resp)
	return &resp, err
}

func (c *Client) AddClassroomLine(classroomID, lineID string) (*ClassroomResponse, error) {
	var resp ClassroomResponse
	err := c.doRequest("PUT", "/api/v1/classrooms/"+classroomID+"/lines/"+lineID, nil, &resp)
	return &resp, err
}

func (c *Client) RemoveClassroomLine(classroomID, lineID string) (*ClassroomResponse, error) {
	var resp ClassroomResponse
	err := c.doRequest("DELETE", "/api/v1/classrooms/"+classroomID+"/lines/"+lineID, nil, &resp)
	return &resp, err
}
