// Package tmsearch provides an in-process Go client for the trademark
// search engine. It opens the Postgres record store directly and runs the
// same filter-tree pipeline as the HTTP service.
//
//	client, _ := tmsearch.New(ctx,
//	    tmsearch.WithPostgres("postgres://tm:tm@localhost:5432/trademarks"),
//	)
//	defer client.Close()
//
//	filter := tmsearch.And(
//	    tmsearch.Leaf("wordmark", "acme"),
//	    tmsearch.Leaf("international_class", "9,42"),
//	)
//	page, _ := client.Search(ctx, filter, 1, 20)
//
// Filters can also be parsed from the JSON wire form with ParseFilter.
package tmsearch
