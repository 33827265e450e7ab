package quotes

import (
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBaseURL = "https://zenquotes.io/api"

// Quote is a single quote returned by the zenquotes API.
type Quote struct {
	Text   string `json:"q"`
	Author string `json:"a"`
}

// Client fetches quotes from zenquotes.io.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// QuoteOfTheDay fetches today's quote.
func (c *Client) QuoteOfTheDay() (*Quote, error) {
	return c.fetch(c.baseURL + "/today")
}

// Random fetches a random quote.
func (c *Client) Random() (*Quote, error) {
	return c.fetch(c.baseURL + "/random")
}

func (c *Client) fetch(url string) (*Quote, error) {
	res, err := c.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("quote api returned status %v", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var qs []Quote
	if err := json.Unmarshal(body, &qs); err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, errors.New("quote api returned no quotes")
	}
	return &qs[0], nil
}
