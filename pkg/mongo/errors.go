package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrEmptyConnectionURL     = errors.New("empty mongo connection URL, use MONGODB_URL env var")
	ErrEmptyDatabase          = errors.New("empty mongo database name, use MONGODB_DATABASE env var")
)
