// Package sqlrunner is the query-executor boundary. It turns a SQL string
// plus a practice-database slug into a ResultSet or a tagged ErrorResponse,
// retrying transient transport failures with bounded exponential backoff.
package sqlrunner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sql-trainer/backend/internal/config"
	"github.com/sql-trainer/backend/internal/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RPCRunner executes queries through a Supabase-style `rpc_sql` endpoint.
// The RPC function is expected to run the query read-only and return the
// rows as a JSON array of objects.
type RPCRunner struct {
	client *http.Client
	cfg    config.RunnerConfig
}

var _ Runner = (*RPCRunner)(nil)

func NewRPCRunner(cfg config.RunnerConfig) *RPCRunner {
	return &RPCRunner{
		cfg: cfg,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (r *RPCRunner) Query(ctx context.Context, slug, query string) (ResultSet, error) {
	endpoint, ok := r.cfg.Endpoints[slug]
	if !ok {
		return ResultSet{}, &ErrorResponse{
			Code:    ErrorCodeUnknownDatabase,
			Message: fmt.Sprintf("no connection configured for database %q", slug),
		}
	}
	key := r.cfg.Keys[slug]

	// a trailing statement terminator is tolerated
	query = strings.TrimSuffix(strings.TrimSpace(query), ";")

	body, err := json.Marshal(rpcRequest{Query: query})
	if err != nil {
		return ResultSet{}, fmt.Errorf("marshal payload: %w", err)
	}

	var attemptErrs *multierror.Error
	backoff := r.cfg.Backoff

	for attempt := 1; attempt <= r.cfg.Retries; attempt++ {
		payload, err := r.send(ctx, endpoint, key, body)
		if err == nil {
			return r.buildResultSet(payload)
		}

		var tagged *ErrorResponse
		if errors.As(err, &tagged) && tagged.Code == ErrorCodeQueryError {
			// the database rejected the SQL; retrying cannot help
			return ResultSet{}, tagged
		}

		attemptErrs = multierror.Append(attemptErrs, err)

		if attempt < r.cfg.Retries {
			metrics.RecordRunnerRetry(slug)
			slog.Warn("transient runner failure, retrying",
				"slug", slug, "attempt", attempt, "backoff", backoff, "error", err)

			select {
			case <-ctx.Done():
				return ResultSet{}, &ErrorResponse{Code: ErrorCodeTransport, Message: ctx.Err().Error()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return ResultSet{}, &ErrorResponse{
		Code:    ErrorCodeTransport,
		Message: fmt.Sprintf("query failed after %d attempts: %v", r.cfg.Retries, attemptErrs.ErrorOrNil()),
	}
}

// send performs one RPC attempt and returns the raw response payload.
// Database rejections come back as *ErrorResponse with ErrorCodeQueryError;
// every other failure is considered transient.
func (r *RPCRunner) send(ctx context.Context, endpoint, key string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/rpc/rpc_sql", strings.TrimSuffix(endpoint, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "error", err)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := rpcErrorMessage(payload)
		if isTransientStatus(resp.StatusCode) {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, message)
		}

		return nil, &ErrorResponse{Code: ErrorCodeQueryError, Message: message}
	}

	return payload, nil
}

// buildResultSet parses the RPC payload into a capped ResultSet with an
// honest total row count.
func (r *RPCRunner) buildResultSet(payload []byte) (ResultSet, error) {
	// some RPC functions return the row array JSON-encoded inside a string
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return ResultSet{}, &ErrorResponse{Code: ErrorCodeBadPayload, Message: err.Error()}
		}
		trimmed = []byte(inner)
	}

	columns, rows, err := decodeRowObjects(trimmed)
	if err != nil {
		return ResultSet{}, err
	}

	total := len(rows)
	if r.cfg.MaxRows > 0 && total > r.cfg.MaxRows {
		rows = rows[:r.cfg.MaxRows]
	}

	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]any{}
	}

	return ResultSet{Columns: columns, Rows: rows, TotalRows: total}, nil
}

// decodeRowObjects parses a JSON array of row objects, preserving the
// column order of the first row. Later rows are aligned to it by name.
func decodeRowObjects(payload []byte) ([]string, [][]any, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		// an object here usually carries the RPC function's own error field
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &failure); err == nil && failure.Error != "" {
			return nil, nil, &ErrorResponse{Code: ErrorCodeQueryError, Message: failure.Error}
		}

		return nil, nil, &ErrorResponse{Code: ErrorCodeBadPayload, Message: "expected a JSON array of rows"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil { // opening '['
		return nil, nil, &ErrorResponse{Code: ErrorCodeBadPayload, Message: err.Error()}
	}

	var columns []string
	var rows [][]any

	for dec.More() {
		keys, values, err := decodeOrderedObject(dec)
		if err != nil {
			return nil, nil, &ErrorResponse{Code: ErrorCodeBadPayload, Message: err.Error()}
		}

		if columns == nil {
			columns = keys
		}

		row := make([]any, len(columns))
		for i, column := range columns {
			row[i] = values[column]
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}

// decodeOrderedObject reads one JSON object from the decoder, keeping the
// key order that encoding/json's map decoding would lose.
func decodeOrderedObject(dec *json.Decoder) ([]string, map[string]any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a row object, got %v", tok)
	}

	var keys []string
	values := make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected an object key, got %v", keyTok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}

		keys = append(keys, key)
		values[key] = value
	}

	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, nil, err
	}

	return keys, values, nil
}

// rpcErrorMessage extracts a displayable message from an error payload.
func rpcErrorMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Message != "" {
		return body.Message
	}

	return strings.TrimSpace(string(payload))
}

// isTransientStatus reports whether an HTTP status is worth retrying.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}

	return code >= 500
}
