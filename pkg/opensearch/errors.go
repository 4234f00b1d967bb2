package opensearch

import "errors"

var (
	// ErrConnectionFailed indicates the client could not be created.
	ErrConnectionFailed = errors.New("opensearch connection failed")

	// ErrHealthcheckFailed indicates the cluster is unreachable or unhealthy.
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")

	// ErrRequestFailed wraps error responses.
	ErrRequestFailed = errors.New("opensearch request failed")

	// ErrInvalidResponse is returned when a response body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid opensearch response")
)
