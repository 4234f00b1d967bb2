package opensearch

import (
	"context"
	"errors"

	"github.com/opensearch-project/opensearch-go/v2"
)

// Healthcheck returns a function that requests cluster info.
func Healthcheck(client *opensearch.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := client.Info(client.Info.WithContext(ctx))
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return errors.Join(ErrHealthcheckFailed, errors.New(res.Status()))
		}
		return nil
	}
}
