package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultAPIURL — базовый адрес REST API v10.
const DefaultAPIURL = "https://discord.com/api/v10"

const userAgent = "DiscordBot (https://github.com/EgorLis/Teamsbot, 1.0)"

// APIError — ответ REST с кодом не 2xx.
type APIError struct {
	Status  int
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api: %d %s (code %d)", e.Status, e.Message, e.Code)
}

type REST struct {
	http    *http.Client
	base    string
	token   string
	limiter *rate.Limiter
}

// NewREST создаёт REST-клиента. Пустой base — DefaultAPIURL; rps <= 0 —
// глобальный лимит Discord (50 запросов в секунду).
func NewREST(token, base string, rps float64) *REST {
	if base == "" {
		base = DefaultAPIURL
	}
	if rps <= 0 {
		rps = 50
	}
	return &REST{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		token:   token,
		limiter: rate.NewLimiter(rate.Limit(rps), int(max(rps, 1))),
	}
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

type createMessage struct {
	Content         string          `json:"content"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

// CreateMessage отправляет сообщение в канал. Упоминания пользователей
// подсвечиваются, @everyone и роли — нет.
func (c *REST) CreateMessage(ctx context.Context, channelID, content string) (*Message, error) {
	var m Message
	body := createMessage{
		Content:         content,
		AllowedMentions: allowedMentions{Parse: []string{"users"}},
	}
	path := "/channels/" + url.PathEscape(channelID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMessage удаляет сообщение (нужно право Manage Messages, кроме своих).
func (c *REST) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := "/channels/" + url.PathEscape(channelID) + "/messages/" + url.PathEscape(messageID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do выполняет запрос с учётом лимитера; на 429 один раз ждёт retry_after
// и повторяет.
func (c *REST) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		req.Header.Set("User-Agent", userAgent)
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			wait := retryAfter(resp.Header, data)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
			continue
		}

		if resp.StatusCode/100 != 2 {
			apiErr := &APIError{Status: resp.StatusCode}
			_ = json.Unmarshal(data, apiErr)
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
			return apiErr
		}

		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode %s %s: %w", method, path, err)
			}
		}
		return nil
	}
}

// retryAfter достаёт задержку из тела 429 (retry_after, секунды) или
// заголовка Retry-After.
func retryAfter(h http.Header, body []byte) time.Duration {
	var rl struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if json.Unmarshal(body, &rl) == nil && rl.RetryAfter > 0 {
		return time.Duration(rl.RetryAfter * float64(time.Second))
	}
	if s, err := strconv.ParseFloat(h.Get("Retry-After"), 64); err == nil && s > 0 {
		return time.Duration(s * float64(time.Second))
	}
	return time.Second
}
