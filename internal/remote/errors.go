package remote

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound reports that no document exists for the list ID. Callers
// treat it as "start fresh", never as a user-visible failure.
var ErrNotFound = errors.New("remote: document not found")

// ErrRateLimited reports that the store rejected the request for quota
// reasons. Callers are expected to back off; the adapter never retries.
var ErrRateLimited = errors.New("remote: rate limited")

// Server error codes that indicate throttling rather than a real failure.
// 16500 is the code Cosmos DB's Mongo API uses for request-rate limits.
var rateLimitCodes = map[int32]bool{
	16500: true, // TooManyRequests
	50:    true, // ExceededTimeLimit
}

// classify maps driver errors onto the adapter's error taxonomy. Anything
// not recognized is returned as-is and treated as transient by callers.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if rateLimitCodes[cmdErr.Code] || strings.Contains(cmdErr.Message, "TooManyRequests") {
			return ErrRateLimited
		}
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if rateLimitCodes[int32(we.Code)] {
				return ErrRateLimited
			}
		}
	}
	return err
}
