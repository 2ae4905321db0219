package sqlrunner

import (
	"context"
	"fmt"
)

// Runner executes a read-only SQL query against one of the practice
// databases and returns its tabular result or a tagged error.
type Runner interface {
	Query(ctx context.Context, slug, query string) (ResultSet, error)
}

// ResultSet is the output of one executed query.
//
// Rows may be capped for display; TotalRows always reflects the true row
// count, so consumers must never assume TotalRows == len(Rows).
type ResultSet struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	TotalRows int      `json:"total_rows"`
}

// rpcRequest is the payload of the rpc_sql call.
type rpcRequest struct {
	Query string `json:"p_query"`
}

const (
	// ErrorCodeQueryError means the database rejected the SQL.
	ErrorCodeQueryError = "QUERY_ERROR"
	// ErrorCodeTransport means the transport failed after the retry budget.
	ErrorCodeTransport = "TRANSPORT_ERROR"
	// ErrorCodeBadPayload means the response format was unrecognized.
	ErrorCodeBadPayload = "BAD_PAYLOAD"
	// ErrorCodeUnknownDatabase means no connection is configured for the slug.
	ErrorCodeUnknownDatabase = "UNKNOWN_DATABASE"
)

// ErrorResponse is the tagged error returned by a Runner. Execution failures
// never escape as panics or untyped errors past this boundary.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
