// Package client is a small Go consumer of the blog API. It carries the
// bearer token, serializes JSON bodies and turns non-2xx responses into
// errors holding the server's message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken sets the credential attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// APIError carries the server's error message and status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

type User struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar"`
	CreateTime time.Time `json:"createTime"`
}

type Article struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	Status     string    `json:"status"`
	Author     string    `json:"author"`
	Views      int       `json:"views"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

type Category struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ArticleCount int       `json:"articleCount"`
	Sort         int       `json:"sort"`
	CreateTime   time.Time `json:"createTime"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ArticleList struct {
	List     []Article `json:"list"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

type ListArticlesParams struct {
	Title    string
	Category string
	Status   string
	Page     int
	PageSize int
}

type CreateArticleParams struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Status   string   `json:"status,omitempty"`
}

type UpdateArticleParams struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title,omitempty"`
	Content  string    `json:"content,omitempty"`
	Summary  *string   `json:"summary,omitempty"`
	Category string    `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Status   string    `json:"status,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Error == "" {
			failure.Error = "request failed"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: failure.Error}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var resp LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) ListArticles(ctx context.Context, params ListArticlesParams) (*ArticleList, error) {
	query := url.Values{}
	if params.Title != "" {
		query.Set("title", params.Title)
	}
	if params.Category != "" {
		query.Set("category", params.Category)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(params.PageSize))
	}

	var resp ArticleList
	if err := c.do(ctx, http.MethodGet, "/api/article/list", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetArticle(ctx context.Context, id uint) (*Article, error) {
	query := url.Values{"id": []string{strconv.FormatUint(uint64(id), 10)}}

	var resp struct {
		Article Article `json:"article"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/article/detail", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Article, nil
}

func (c *Client) CreateArticle(ctx context.Context, params CreateArticleParams) (*Article, error) {
	var resp struct {
		Article Article `json:"article"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/article/create", nil, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Article, nil
}

func (c *Client) UpdateArticle(ctx context.Context, params UpdateArticleParams) (*Article, error) {
	var resp struct {
		Article Article `json:"article"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/article/update", nil, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Article, nil
}

func (c *Client) DeleteArticle(ctx context.Context, id uint) error {
	query := url.Values{"id": []string{strconv.FormatUint(uint64(id), 10)}}
	return c.do(ctx, http.MethodDelete, "/api/article/delete", query, nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var resp struct {
		List []Category `json:"list"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/category/list", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.List, nil
}
