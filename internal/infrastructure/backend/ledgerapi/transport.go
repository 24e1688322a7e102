package ledgerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/resilience"
)

func (c *Client) getJSON(ctx context.Context, path string, out any, operation string) error {
	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("ledger %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return newHTTPStatusError(operation, resp)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return fmt.Errorf("read %s response: %w", operation, err)
		}
		if c.contract != nil {
			if err := c.contract.ValidateResponse(callCtx, req, resp.StatusCode, resp.Header, body); err != nil {
				return &ContractError{Operation: operation, Err: err}
			}
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		return nil
	}
	return c.execute(ctx, operation, call, classifyBackendError)
}

func (c *Client) postMultipart(ctx context.Context, path, filename, tag string, body io.Reader, operation string) error {
	call := func(callCtx context.Context) error {
		pr, pw := io.Pipe()
		form := multipart.NewWriter(pw)
		go func() {
			pw.CloseWithError(writeUploadForm(form, filename, tag, body))
		}()

		// Some backend versions read tag from the query string; send it in both places.
		target := c.baseURL + path + "?" + url.Values{"tag": []string{tag}}.Encode()
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, target, pr)
		if err != nil {
			_ = pr.Close()
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		req.Header.Set("Content-Type", form.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("ledger %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return newHTTPStatusError(operation, resp)
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil
	}

	// The body is a one-shot stream, so uploads are never retried.
	classifier := func(err error) resilience.ErrorClassification {
		class := classifyBackendError(err)
		class.Retryable = false
		return class
	}
	return c.execute(ctx, operation, call, classifier)
}

func writeUploadForm(form *multipart.Writer, filename, tag string, body io.Reader) error {
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := form.WriteField("tag", tag); err != nil {
		return fmt.Errorf("write tag field: %w", err)
	}
	return form.Close()
}

func (c *Client) execute(
	ctx context.Context,
	operation string,
	call func(context.Context) error,
	classifier resilience.ErrorClassifier,
) error {
	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ledger."+operation, call, classifier)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}

func newHTTPStatusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
