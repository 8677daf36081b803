package fetcher

import (
	jsoniter "github.com/json-iterator/go"
)

// graphQLBody wraps a raw graphql query string into the JSON body shape the
// endpoint expects.
func graphQLBody(graphqlQuery string) (string, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(map[string]string{
		"query": graphqlQuery,
	})
}
