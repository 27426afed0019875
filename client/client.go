// Package client is a typed HTTP client for the MADAURE API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/madaure/backend/internal/models"
)

const defaultTimeout = 15 * time.Second

// APIError is returned for every non-2xx response
type APIError struct {
	Status  int
	Message string
	Errors  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("madaure: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("madaure: %d %s %v", e.Status, e.Message, e.Errors)
}

// Client calls the MADAURE API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken authenticates every request with a bearer token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the API mounted at baseURL, e.g. "https://api.madaure.dz/api"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, typically after Login
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates a student account; the returned token is not applied to the client
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and applies the returned token to the client
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, models.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// LessonQuery holds the optional filters of ListLessons
type LessonQuery struct {
	Subject   string
	TeacherID int
	Status    models.LessonStatus
	IsLive    *bool
	Page      int
	Count     int
}

func (q LessonQuery) values() url.Values {
	v := url.Values{}
	if q.Subject != "" {
		v.Set("subject", q.Subject)
	}
	if q.TeacherID > 0 {
		v.Set("teacherId", strconv.Itoa(q.TeacherID))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.IsLive != nil {
		v.Set("live", strconv.FormatBool(*q.IsLive))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Count > 0 {
		v.Set("count", strconv.Itoa(q.Count))
	}
	return v
}

// ListLessons retrieves a page of lessons
func (c *Client) ListLessons(ctx context.Context, q LessonQuery) ([]models.LessonListItem, error) {
	var resp []models.LessonListItem
	if err := c.do(ctx, http.MethodGet, "/lessons", q.values(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLesson retrieves a lesson with its content blocks
func (c *Client) GetLesson(ctx context.Context, id int) (*models.Lesson, error) {
	var resp models.Lesson
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/lessons/%d", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenderLesson retrieves the rendered view of a lesson
func (c *Client) RenderLesson(ctx context.Context, id int) (*models.RenderedLesson, error) {
	var resp models.RenderedLesson
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/lessons/%d/render", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitLessonQuiz scores answers to the quiz block at order
//
// "answers" maps question index to selected option index.
func (c *Client) SubmitLessonQuiz(ctx context.Context, lessonID, order int, answers map[int]int) (*models.ScoreResponse, error) {
	var resp models.ScoreResponse
	path := fmt.Sprintf("/lessons/%d/blocks/%d/submit", lessonID, order)
	if err := c.do(ctx, http.MethodPost, path, nil, models.SubmitAnswersRequest{Answers: answers}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitQuiz stores and scores an attempt at a quiz
func (c *Client) SubmitQuiz(ctx context.Context, quizID int, answers map[int]int) (*models.QuizResultResponse, error) {
	var resp models.QuizResultResponse
	path := fmt.Sprintf("/quizzes/%d/submit", quizID)
	if err := c.do(ctx, http.MethodPost, path, nil, models.SubmitAnswersRequest{Answers: answers}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Checkout subscribes the authenticated user to a plan
func (c *Client) Checkout(ctx context.Context, planName string) (*models.Subscription, error) {
	var resp models.Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions/checkout", nil, models.CheckoutRequest{PlanName: planName}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MySubscription retrieves the subscription of the authenticated user
func (c *Client) MySubscription(ctx context.Context) (*models.Subscription, error) {
	var resp models.Subscription
	if err := c.do(ctx, http.MethodGet, "/subscriptions/mine", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Notifications retrieves the latest notifications of the authenticated user
//
// A non-positive limit uses the server default.
func (c *Client) Notifications(ctx context.Context, limit int) ([]models.Notification, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var resp []models.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Search looks q up in lessons, summaries, quizzes and teachers
func (c *Client) Search(ctx context.Context, q string) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	if err := c.do(ctx, http.MethodGet, "/search", url.Values{"q": {q}}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends one request and decodes a 2xx body into out, or a non-2xx body into *APIError
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Errors = body.Errors
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
